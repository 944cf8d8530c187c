package async

import (
	"context"
	"testing"
)

type countResult struct {
	applied *[]int
	n       int
}

func (r countResult) Apply() Task {
	*r.applied = append(*r.applied, r.n)
	if r.n == 0 {
		return nil
	}
	next := r.n - 1
	return func(context.Context) Result { return countResult{applied: r.applied, n: next} }
}

func TestRun_FollowsUpUntilNil(t *testing.T) {
	var applied []int
	Run(context.Background(), func(context.Context) Result {
		return countResult{applied: &applied, n: 2}
	})

	if len(applied) != 3 || applied[0] != 2 || applied[2] != 0 {
		t.Errorf("applied = %v, want [2 1 0]", applied)
	}
}

func TestRun_NilTask(t *testing.T) {
	Run(context.Background(), nil)
}
