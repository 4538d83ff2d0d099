package configs

import "github.com/spf13/viper"

// JobsConfig 后台定时任务配置，cron 为空表示不注册该任务.
type JobsConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	LineageRepairCron string `mapstructure:"lineage_repair_cron"`
	ExpiryReportCron  string `mapstructure:"expiry_report_cron"`
}

func (c *JobsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.lineage_repair_cron", "15 3 * * *")
	v.SetDefault("jobs.expiry_report_cron", "0 7 * * *")
}
