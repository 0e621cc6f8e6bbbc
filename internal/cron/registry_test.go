package cron

import (
	"context"
	"testing"
)

type namedJob string

func (n namedJob) Name() string {
	return string(n)
}

func (namedJob) Run(context.Context) error {
	return nil
}

func TestRegistryKeepsOrderAndSkipsNil(t *testing.T) {
	registry := NewRegistry(namedJob(StateRetentionJobName), nil)
	registry.Register(nil)
	registry.Register(namedJob("rate-limit-sweep"))

	if registry.Len() != 2 {
		t.Fatalf("expected 2 jobs, got %d", registry.Len())
	}
	names := []string{}
	for _, job := range registry.Jobs() {
		names = append(names, job.Name())
	}
	if names[0] != StateRetentionJobName || names[1] != "rate-limit-sweep" {
		t.Fatalf("jobs out of order: %v", names)
	}
}

func TestRegistryJobsReturnsCopy(t *testing.T) {
	registry := NewRegistry(namedJob("a"))
	jobs := registry.Jobs()
	jobs[0] = namedJob("mutated")
	if got := registry.Jobs()[0].Name(); got != "a" {
		t.Fatalf("internal slice leaked, got %q", got)
	}
}
