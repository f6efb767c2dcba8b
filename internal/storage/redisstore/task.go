// Package redisstore keeps tasks in Redis: one JSON record per key plus a set
// indexing every stored id.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/BuzzLyutic/taskeeper/internal/model"
	"github.com/BuzzLyutic/taskeeper/internal/storage"
)

const maxTxRetries = 5

type TaskAdapter struct {
	client *redis.Client
	prefix string
}

func NewTaskAdapter(client *redis.Client, prefix string) *TaskAdapter {
	return &TaskAdapter{client: client, prefix: prefix}
}

var _ storage.Adapter = (*TaskAdapter)(nil)

func (a *TaskAdapter) key(id string) string {
	return a.prefix + "task:" + id
}

func (a *TaskAdapter) indexKey() string {
	return a.prefix + "tasks"
}

func (a *TaskAdapter) Insert(ctx context.Context, task model.Task) error {
	data, err := json.Marshal(storage.NewRecord(task))
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", task.ID, err)
	}

	key := a.key(task.ID)
	return a.watch(ctx, key, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("insert %s: %w", task.ID, storage.ErrDuplicate)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, a.indexKey(), task.ID)
			return nil
		})
		return err
	})
}

func (a *TaskAdapter) FindByID(ctx context.Context, id string) (model.Task, bool, error) {
	data, err := a.client.Get(ctx, a.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Task{}, false, nil
	}
	if err != nil {
		return model.Task{}, false, fmt.Errorf("get task %s: %w", id, err)
	}

	t, err := decode(data)
	if err != nil {
		return model.Task{}, false, err
	}
	return t, true, nil
}

// Update is a WATCHed read-merge-write so a concurrent writer forces a retry
// instead of a lost update.
func (a *TaskAdapter) Update(ctx context.Context, id string, patch storage.Patch) (model.Task, bool, error) {
	var (
		task  model.Task
		found bool
	)

	key := a.key(id)
	err := a.watch(ctx, key, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}

		var rec storage.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("unmarshal task %s: %w", id, err)
		}
		rec.Apply(patch)

		updated, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		}); err != nil {
			return err
		}

		task, err = rec.Task()
		found = err == nil
		return err
	})
	if err != nil {
		return model.Task{}, false, err
	}
	return task, found, nil
}

func (a *TaskAdapter) Remove(ctx context.Context, id string) error {
	_, err := a.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, a.key(id))
		pipe.SRem(ctx, a.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

func (a *TaskAdapter) List(ctx context.Context) ([]model.Task, error) {
	ids, err := a.client.SMembers(ctx, a.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list task ids: %w", err)
	}
	if len(ids) == 0 {
		return []model.Task{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = a.key(id)
	}
	values, err := a.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// removed between SMEMBERS and MGET
			continue
		}
		t, err := decode([]byte(s))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (a *TaskAdapter) watch(ctx context.Context, key string, fn func(*redis.Tx) error) error {
	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = a.client.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("%s: gave up after %d attempts: %w", key, maxTxRetries, err)
}

func decode(data []byte) (model.Task, error) {
	var rec storage.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.Task{}, fmt.Errorf("unmarshal task: %w", err)
	}
	return rec.Task()
}
