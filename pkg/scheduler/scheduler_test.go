package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("condition not met before deadline")
}

func TestScheduler_RunNowRecordsStatus(t *testing.T) {
	s, err := NewScheduler()
	if err != nil {
		t.Fatal(err)
	}

	s.Start()
	t.Cleanup(func() { _ = s.Stop() })

	var runs atomic.Int32

	ctx := context.Background()

	if err := s.AddCron(ctx, "documents.lineage_repair", "0 3 * * *", func(context.Context) error {
		runs.Add(1)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.AddCron(ctx, "documents.lineage_repair", "0 4 * * *", func(context.Context) error { return nil }); err == nil {
		t.Error("duplicate job name accepted")
	}

	if err := s.AddCron(ctx, "documents.expiry_report", "0 7 * * *", func(context.Context) error {
		return errors.New("db offline")
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.RunNow("documents.lineage_repair"); err != nil {
		t.Fatal(err)
	}

	if err := s.RunNow("documents.expiry_report"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		info, _ := s.GetJobInfoByName("documents.lineage_repair")
		return !info.LastSuccess.IsZero()
	})

	waitFor(t, func() bool {
		info, _ := s.GetJobInfoByName("documents.expiry_report")
		return info.Status == StatusError
	})

	infos := s.GetJobInfos()
	if len(infos) != 2 || infos[0].Name != "documents.expiry_report" {
		t.Fatalf("infos = %+v", infos)
	}

	if infos[0].Error != "db offline" || infos[1].Runs != 1 || runs.Load() != 1 {
		t.Errorf("infos = %+v, runs = %d", infos, runs.Load())
	}

	if infos[1].NextRun.IsZero() {
		t.Error("next run should be known")
	}
}

func TestScheduler_UnknownJob(t *testing.T) {
	s, err := NewScheduler()
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = s.Stop() })

	if err := s.RunNow("missing"); err == nil {
		t.Error("RunNow on unknown job should fail")
	}

	if err := s.RemoveJobByName("missing"); err == nil {
		t.Error("remove unknown job should fail")
	}

	if err := s.AddCron(context.Background(), "bad", "not a cron", func(context.Context) error { return nil }); err == nil {
		t.Error("invalid cron accepted")
	}
}
