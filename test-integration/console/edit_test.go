package integration

import (
	"errors"
	"time"

	"github.com/containerd/errdefs"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/stacklok/dbcluster-console/internal/cache"
	"github.com/stacklok/dbcluster-console/internal/editor"
	"github.com/stacklok/dbcluster-console/internal/httpclient"
	"github.com/stacklok/dbcluster-console/internal/mutation"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
	"github.com/stacklok/dbcluster-console/test-integration/console/helpers"
)

var _ = Describe("Editing through the console API", Label("edit"), func() {
	var (
		kubeClient   client.Client
		serverHelper *helpers.ServerTestHelper
		console      *httpclient.ConsoleClient
		store        *cache.Store[*v1alpha1.DatabaseCluster]
		key          = types.NamespacedName{Namespace: "databases", Name: "orders"}
	)

	sessionOptions := []editor.Option[*v1alpha1.DatabaseCluster]{
		editor.WithValidation[*v1alpha1.DatabaseCluster](v1alpha1.ValidateDatabaseClusterUpdate),
		editor.WithMerger[*v1alpha1.DatabaseCluster](
			mutation.MergerFunc[*v1alpha1.DatabaseCluster](v1alpha1.MergeDatabaseCluster)),
		editor.WithCoordinatorOptions[*v1alpha1.DatabaseCluster](
			mutation.WithRetryDelay(20*time.Millisecond),
			mutation.WithMaxWindow(2*time.Second),
		),
	}

	// writeSpec and writeStatus change the stored object behind the console's back
	writeSpec := func(change func(*v1alpha1.DatabaseCluster)) {
		var current v1alpha1.DatabaseCluster
		Expect(kubeClient.Get(ctx, key, &current)).To(Succeed())
		change(&current)
		Expect(kubeClient.Update(ctx, &current)).To(Succeed())
	}

	writeStatus := func(change func(*v1alpha1.DatabaseCluster)) {
		var current v1alpha1.DatabaseCluster
		Expect(kubeClient.Get(ctx, key, &current)).To(Succeed())
		change(&current)
		Expect(kubeClient.Status().Update(ctx, &current)).To(Succeed())
	}

	stored := func() *v1alpha1.DatabaseCluster {
		var current v1alpha1.DatabaseCluster
		Expect(kubeClient.Get(ctx, key, &current)).To(Succeed())
		return &current
	}

	BeforeEach(func() {
		kubeClient = helpers.NewFakeKubeClient(
			helpers.NewDatabaseCluster("databases", "orders", 3),
			helpers.NewDatabaseCluster("databases", "billing", 1),
			helpers.NewBackupStorage("databases", "s3-eu"),
		)
		serverHelper = helpers.NewServerTestHelper(ctx, kubeClient)
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)

		console = serverHelper.ConsoleClient()
		store = cache.NewStore[*v1alpha1.DatabaseCluster]()
	})

	AfterEach(func() {
		Expect(serverHelper.StopServer()).To(Succeed())
	})

	It("lists and reads resources", func() {
		clusters, err := console.ListDatabaseClusters(ctx, "databases")
		Expect(err).NotTo(HaveOccurred())
		Expect(clusters).To(HaveLen(2))

		bs, err := console.GetBackupStorage(ctx, types.NamespacedName{Namespace: "databases", Name: "s3-eu"})
		Expect(err).NotTo(HaveOccurred())
		Expect(bs.Spec.Bucket).To(Equal("backups"))

		_, err = console.GetDatabaseCluster(ctx, types.NamespacedName{Namespace: "databases", Name: "missing"})
		Expect(errdefs.IsNotFound(err)).To(BeTrue())
	})

	It("applies an uncontested edit", func() {
		session, err := editor.Open(ctx, console.DatabaseClusters(), key, store, sessionOptions...)
		Expect(err).NotTo(HaveOccurred())

		updated, err := session.Apply(ctx, func(dc *v1alpha1.DatabaseCluster) {
			dc.Spec.Engine.Replicas = 5
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Spec.Engine.Replicas).To(Equal(int32(5)))
		Expect(session.State()).To(Equal(mutation.StateSucceeded))

		Expect(stored().Spec.Engine.Replicas).To(Equal(int32(5)))

		cached, ok := store.Get(key)
		Expect(ok).To(BeTrue())
		Expect(cached.GetResourceVersion()).To(Equal(updated.GetResourceVersion()))
	})

	It("rebases over a status write and keeps the operator's status", func() {
		session, err := editor.Open(ctx, console.DatabaseClusters(), key, store, sessionOptions...)
		Expect(err).NotTo(HaveOccurred())

		// The operator reports a degraded member after the console loaded the object
		writeStatus(func(dc *v1alpha1.DatabaseCluster) {
			dc.Status.Ready = 2
			dc.Status.Message = "member 3 restarting"
		})

		updated, err := session.Apply(ctx, func(dc *v1alpha1.DatabaseCluster) {
			dc.Spec.Engine.Replicas = 5
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Spec.Engine.Replicas).To(Equal(int32(5)))

		current := stored()
		Expect(current.Spec.Engine.Replicas).To(Equal(int32(5)))
		Expect(current.Status.Ready).To(Equal(int32(2)))
		Expect(current.Status.Message).To(Equal("member 3 restarting"))
	})

	It("refuses to overwrite a concurrent spec change", func() {
		session, err := editor.Open(ctx, console.DatabaseClusters(), key, store, sessionOptions...)
		Expect(err).NotTo(HaveOccurred())

		// Someone else pauses the cluster, which bumps the generation
		writeSpec(func(dc *v1alpha1.DatabaseCluster) {
			dc.Spec.Paused = true
			dc.Generation = 2
		})

		_, err = session.Apply(ctx, func(dc *v1alpha1.DatabaseCluster) {
			dc.Spec.Engine.Replicas = 5
		})
		Expect(errors.Is(err, mutation.ErrGenerationDivergence)).To(BeTrue())
		Expect(editor.Describe(err)).NotTo(BeEmpty())

		current := stored()
		Expect(current.Spec.Paused).To(BeTrue())
		Expect(current.Spec.Engine.Replicas).To(Equal(int32(3)))
	})

	It("rejects an invalid edit before writing", func() {
		session, err := editor.Open(ctx, console.DatabaseClusters(), key, store, sessionOptions...)
		Expect(err).NotTo(HaveOccurred())
		before := stored().GetResourceVersion()

		_, err = session.Apply(ctx, func(dc *v1alpha1.DatabaseCluster) {
			dc.Spec.Engine.Replicas = 4
		})
		Expect(errors.Is(err, v1alpha1.ErrInvalid)).To(BeTrue())
		Expect(stored().GetResourceVersion()).To(Equal(before))
	})

	It("maps a stale write from the raw API to a conflict", func() {
		stale, err := console.GetDatabaseCluster(ctx, key)
		Expect(err).NotTo(HaveOccurred())

		writeStatus(func(dc *v1alpha1.DatabaseCluster) {
			dc.Status.Message = "backup running"
		})

		stale.Spec.Engine.Replicas = 5
		_, err = console.UpdateDatabaseCluster(ctx, stale)
		Expect(mutation.IsConflict(err)).To(BeTrue())
	})
})
