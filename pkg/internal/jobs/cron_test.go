package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/yeisme/casefile/pkg/configs"
	"github.com/yeisme/casefile/pkg/scheduler"
)

type fakeMaintainer struct {
	batches   []int
	repairErr error
	reports   int
}

func (f *fakeMaintainer) RepairLineage(_ context.Context, batch int) (int, error) {
	if len(f.batches) == 0 {
		return 0, f.repairErr
	}

	n := f.batches[0]
	f.batches = f.batches[1:]

	return n, nil
}

func (f *fakeMaintainer) ExpiredReport(context.Context) (int64, error) {
	f.reports++
	return 3, nil
}

func TestLineageRepair_DrainsFullBatches(t *testing.T) {
	m := &fakeMaintainer{batches: []int{lineageRepairBatch, lineageRepairBatch, 7, 99}}

	if err := lineageRepair(m)(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(m.batches) != 1 {
		t.Errorf("job should stop after a short batch, remaining = %v", m.batches)
	}
}

func TestLineageRepair_PropagatesError(t *testing.T) {
	m := &fakeMaintainer{repairErr: errors.New("db offline")}

	if err := lineageRepair(m)(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestRegisterCronJobs(t *testing.T) {
	sched, err := scheduler.NewScheduler()
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = sched.Stop() })

	m := &fakeMaintainer{}
	cfg := configs.JobsConfig{Enabled: true, LineageRepairCron: "15 3 * * *"}

	if err := RegisterCronJobs(context.Background(), sched, m, cfg); err != nil {
		t.Fatal(err)
	}

	infos := sched.GetJobInfos()
	if len(infos) != 1 || infos[0].Name != JobLineageRepair {
		t.Errorf("registered = %+v", infos)
	}

	if err := RegisterCronJobs(context.Background(), sched, nil, cfg); err == nil {
		t.Error("nil maintainer accepted")
	}
}

func TestRegisterCronJobs_Disabled(t *testing.T) {
	sched, err := scheduler.NewScheduler()
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = sched.Stop() })

	cfg := configs.JobsConfig{LineageRepairCron: "15 3 * * *", ExpiryReportCron: "0 7 * * *"}

	if err := RegisterCronJobs(context.Background(), sched, &fakeMaintainer{}, cfg); err != nil {
		t.Fatal(err)
	}

	if n := len(sched.GetJobInfos()); n != 0 {
		t.Errorf("disabled jobs registered %d entries", n)
	}
}
