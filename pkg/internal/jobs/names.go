package jobs

// 任务名称.
const (
	JobLineageRepair = "documents.lineage_repair"
	JobExpiryReport  = "documents.expiry_report"
)

// lineageRepairBatch 每次修复的最大文档数.
const lineageRepairBatch = 200
