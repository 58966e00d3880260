/*
 * Copyright © 2025 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package report persists, measures and renders scenario runs
package report

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
	"github.com/roshan123456789/kunji-finance/pkg/scenario"
	gormSQLite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const TypeSQLite = "sqlite"

type Store interface {
	// Record stores a suite report and its case results as one run
	Record(ctx context.Context, rep *scenario.Report) (uuid.UUID, error)
	// Runs lists the most recent runs, newest first, optionally for one suite
	Runs(ctx context.Context, suite string, limit int) ([]*Run, error)
	Results(ctx context.Context, runID uuid.UUID) ([]*CaseResult, error)
	Close()
}

type Run struct {
	ID         uuid.UUID `gorm:"column:id;primaryKey;type:text"`
	Suite      string    `gorm:"column:suite;index"`
	Started    time.Time `gorm:"column:started"`
	DurationMS int64     `gorm:"column:duration_ms"`
	Passed     int       `gorm:"column:passed"`
	Failed     int       `gorm:"column:failed"`
	Skipped    int       `gorm:"column:skipped"`
}

func (Run) TableName() string {
	return "runs"
}

type CaseResult struct {
	RunID      uuid.UUID `gorm:"column:run_id;primaryKey;type:text"`
	Seq        int       `gorm:"column:seq;primaryKey"`
	Path       string    `gorm:"column:path"`
	Status     string    `gorm:"column:status"`
	Reason     string    `gorm:"column:reason"`
	DurationMS int64     `gorm:"column:duration_ms"`
}

func (CaseResult) TableName() string {
	return "run_results"
}

type store struct {
	gdb *gorm.DB
}

func NewStore(ctx context.Context, conf *harnessconf.ReportConfig) (Store, error) {
	switch conf.Type {
	case "", TypeSQLite:
	default:
		return nil, i18n.NewError(ctx, msgs.MsgReportDBInvalidType, conf.Type)
	}
	if conf.DSN == "" {
		return nil, i18n.NewError(ctx, msgs.MsgReportMissingDSN)
	}
	gdb, err := gorm.Open(gormSQLite.Open(conf.DSN), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err == nil && conf.DebugQueries {
		gdb = gdb.Debug()
	}
	if err == nil {
		// sqlite serializes writers anyway, and a :memory: database exists per connection
		var db *sql.DB
		if db, err = gdb.DB(); err == nil {
			db.SetMaxOpenConns(1)
		}
	}
	if err == nil {
		err = gdb.WithContext(ctx).AutoMigrate(&Run{}, &CaseResult{})
	}
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgReportDBInitFailed)
	}
	return &store{gdb: gdb}, nil
}

func newRun(rep *scenario.Report) (*Run, []*CaseResult) {
	run := &Run{
		ID:         uuid.New(),
		Suite:      rep.Suite,
		Started:    rep.Started.UTC(),
		DurationMS: rep.Duration.Milliseconds(),
		Passed:     rep.Passed(),
		Failed:     len(rep.Failed()),
		Skipped:    rep.Skipped(),
	}
	results := make([]*CaseResult, len(rep.Results))
	for i, r := range rep.Results {
		cr := &CaseResult{
			RunID:      run.ID,
			Seq:        i,
			Path:       r.Name(),
			Status:     string(r.Status),
			DurationMS: r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			cr.Reason = r.Err.Error()
		}
		results[i] = cr
	}
	return run, results
}

func (s *store) Record(ctx context.Context, rep *scenario.Report) (uuid.UUID, error) {
	run, results := newRun(rep)
	err := s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}
		if len(results) == 0 {
			return nil
		}
		return tx.CreateInBatches(results, 100).Error
	})
	if err != nil {
		return uuid.Nil, i18n.WrapError(ctx, err, msgs.MsgReportStoreFailed, run.ID)
	}
	log.L(ctx).Infof("Recorded run %s of %s (%d results)", run.ID, run.Suite, len(results))
	return run.ID, nil
}

func (s *store) Runs(ctx context.Context, suite string, limit int) ([]*Run, error) {
	var runs []*Run
	q := s.gdb.WithContext(ctx).Order("started DESC")
	if suite != "" {
		q = q.Where("suite = ?", suite)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgReportQueryFailed)
	}
	return runs, nil
}

func (s *store) Results(ctx context.Context, runID uuid.UUID) ([]*CaseResult, error) {
	var results []*CaseResult
	err := s.gdb.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("seq").
		Find(&results).Error
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgReportQueryFailed)
	}
	return results, nil
}

func (s *store) Close() {
	db, err := s.gdb.DB()
	if err == nil {
		err = db.Close()
	}
	log.L(context.Background()).Infof("Report DB closed (err=%v)", err)
}
