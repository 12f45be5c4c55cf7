package async_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mingle/internal/pkg/async"
)

func TestPoolExecutesAllTasks(t *testing.T) {
	var executed int64

	tasks := make([]async.Task, 0, 10)
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("task_%d", i)
		tasks = append(tasks, async.Task{
			Name: name,
			Execute: func() (interface{}, error) {
				atomic.AddInt64(&executed, 1)
				return name, nil
			},
		})
	}

	pool := async.NewPool(4)
	results := pool.Execute(context.Background(), tasks)

	assert.Equal(t, int64(10), executed)
	require.Len(t, results, 10)
	for name, result := range results {
		assert.NoError(t, result.Err)
		assert.Equal(t, name, result.Data)
	}
}

func TestPoolReportsTaskErrors(t *testing.T) {
	boom := errors.New("boom")
	tasks := []async.Task{
		{Name: "ok", Execute: func() (interface{}, error) { return 1, nil }},
		{Name: "fails", Execute: func() (interface{}, error) { return nil, boom }},
	}

	pool := async.NewPool(2)
	results := pool.Execute(context.Background(), tasks)

	require.Len(t, results, 2)
	assert.NoError(t, results["ok"].Err)
	assert.ErrorIs(t, results["fails"].Err, boom)
}

func TestPoolWithMoreWorkersThanTasks(t *testing.T) {
	tasks := []async.Task{
		{Name: "only", Execute: func() (interface{}, error) { return "done", nil }},
	}

	pool := async.NewPool(8)
	results := pool.Execute(context.Background(), tasks)

	require.Len(t, results, 1)
	assert.Equal(t, "done", results["only"].Data)
}
