package config

type WorkerKeyStruct struct {
	PersistAuditQueue      string
	PersistViolationsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAuditQueue:      "persist_audit_queue",
	PersistViolationsQueue: "persist_violations_queue",
}
