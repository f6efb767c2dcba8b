// Package sqlite is the embedded relational backend, built on GORM with the
// SQLite driver.
package sqlite

import (
	"context"
	"errors"
	"fmt"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BuzzLyutic/taskeeper/internal/model"
	"github.com/BuzzLyutic/taskeeper/internal/storage"
)

const tableName = "tasks"

// Open opens (or creates) the database at path. ":memory:" gives a private
// in-memory database; it is pinned to one connection so every query sees the
// same tables.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(gormsqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates the tasks table if it does not exist.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(storage.Schema).Error; err != nil {
		return fmt.Errorf("migrate tasks table: %w", err)
	}
	return nil
}

type TaskAdapter struct {
	db *gorm.DB
}

func NewTaskAdapter(db *gorm.DB) *TaskAdapter {
	return &TaskAdapter{db: db}
}

var _ storage.Adapter = (*TaskAdapter)(nil)

func (a *TaskAdapter) tasks(ctx context.Context) *gorm.DB {
	return a.db.WithContext(ctx).Table(tableName)
}

func (a *TaskAdapter) Insert(ctx context.Context, task model.Task) error {
	rec := storage.NewRecord(task)
	if err := a.tasks(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("insert %s: %w", task.ID, storage.ErrDuplicate)
		}
		return fmt.Errorf("insert %s: %w", task.ID, err)
	}
	return nil
}

func (a *TaskAdapter) FindByID(ctx context.Context, id string) (model.Task, bool, error) {
	return findByID(a.tasks(ctx), id)
}

func findByID(tx *gorm.DB, id string) (model.Task, bool, error) {
	var rec storage.Record
	if err := tx.Where("id = ?", id).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Task{}, false, nil
		}
		return model.Task{}, false, fmt.Errorf("find %s: %w", id, err)
	}

	t, err := rec.Task()
	if err != nil {
		return model.Task{}, false, err
	}
	return t, true, nil
}

// Update writes the supplied columns and reads the row back in one transaction.
func (a *TaskAdapter) Update(ctx context.Context, id string, patch storage.Patch) (model.Task, bool, error) {
	var (
		task  model.Task
		found bool
	)

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table(tableName).Where("id = ?", id).Updates(columns(patch))
		if res.Error != nil {
			return fmt.Errorf("update %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var err error
		task, found, err = findByID(tx.Table(tableName), id)
		return err
	})
	if err != nil {
		return model.Task{}, false, err
	}
	return task, found, nil
}

func (a *TaskAdapter) Remove(ctx context.Context, id string) error {
	if err := a.tasks(ctx).Where("id = ?", id).Delete(&storage.Record{}).Error; err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

func (a *TaskAdapter) List(ctx context.Context) ([]model.Task, error) {
	var records []storage.Record
	if err := a.tasks(ctx).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return storage.DecodeAll(records)
}

func columns(p storage.Patch) map[string]interface{} {
	cols := map[string]interface{}{"updated_at": p.Stamp()}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.DueDate != nil {
		cols["due_date"] = model.FormatTime(*p.DueDate)
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.Priority != nil {
		cols["priority"] = string(*p.Priority)
	}
	return cols
}
