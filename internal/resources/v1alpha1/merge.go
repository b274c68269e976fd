package v1alpha1

// The operator owns status. A PUT response that carries no status for the generation we
// already cached would otherwise blank it in the console until the next watch event.

// MergeDatabaseCluster keeps the cached status when server carries none for the same generation.
func MergeDatabaseCluster(cached, server *DatabaseCluster) *DatabaseCluster {
	out := server.DeepCopy()
	if cached != nil && out.Status.IsZero() && cached.Generation == out.Generation {
		cached.Status.DeepCopyInto(&out.Status)
	}
	return out
}

// MergeBackupStorage keeps the cached status when server carries none for the same generation.
func MergeBackupStorage(cached, server *BackupStorage) *BackupStorage {
	out := server.DeepCopy()
	if cached != nil && out.Status.IsZero() && cached.Generation == out.Generation {
		cached.Status.DeepCopyInto(&out.Status)
	}
	return out
}

// MergeMonitoringConfig keeps the cached status when server carries none for the same generation.
func MergeMonitoringConfig(cached, server *MonitoringConfig) *MonitoringConfig {
	out := server.DeepCopy()
	if cached != nil && out.Status.IsZero() && cached.Generation == out.Generation {
		cached.Status.DeepCopyInto(&out.Status)
	}
	return out
}
