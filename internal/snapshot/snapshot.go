package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"mangabuff-tracker/internal/components/assert"
	"mangabuff-tracker/internal/components/telemetry"
	"mangabuff-tracker/internal/scrapers/mangabuff"
	"mangabuff-tracker/pkg/migrations"
	"time"

	_ "embed"
)

//go:embed schema.sql
var Schema string

const (
	report_db_query = "db.query"
	report_save     = "store.save"
)

// Run is the result of one query.
type Run struct {
	Id    int64
	Time  time.Time
	Query mangabuff.Query
	Cards []*mangabuff.Card
}

// Store keeps the history of query runs. Nothing reads it back to answer a query,
// it is only there to look at past results.
type Store struct {
	db  *sql.DB
	tel telemetry.API
}

func NewStore(db *sql.DB, tel telemetry.API) Store {
	assert.NotNil(db)
	assert.NotNil(tel)

	return Store{
		db:  db,
		tel: telemetry.NewScopedAPI("snapshot", tel),
	}
}

// OpenStore opens (and migrates) the store's database at path.
func OpenStore(path string, tel telemetry.API) (Store, *sql.DB, error) {
	db, err := migrations.OpenAndMigrateDB(Schema, path)
	if err != nil {
		return Store{}, nil, err
	}
	return NewStore(db, tel), db, nil
}

// Save stores a run and returns its id.
func (s Store) Save(ctx context.Context, run Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("begin tx: %w", err))
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		"insert into run (time, query_text, want, rank) values (?, ?, ?, ?)",
		run.Time.Unix(),
		run.Query.Text,
		run.Query.Want,
		string(run.Query.Rank),
	)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "CreateRun")
		return 0, err
	}
	runId, err := res.LastInsertId()
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "CreateRun")
		return 0, err
	}

	for i, card := range run.Cards {
		lots := card.Lots
		if lots == nil {
			lots = []string{}
		}
		encodedLots, err := json.Marshal(lots)
		if err != nil {
			s.tel.ReportBroken(report_save, fmt.Errorf("encode lots: %w", err), card.Id)
			return 0, err
		}

		_, err = tx.ExecContext(
			ctx,
			`insert into run_card (run_id, position, card_id, rank, name, work_name, lots)
			values (?, ?, ?, ?, ?, ?, ?)`,
			runId,
			i,
			card.Id,
			string(card.Rank),
			card.Name,
			card.WorkName,
			string(encodedLots),
		)
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "CreateRunCard", runId, card.Id)
			return 0, err
		}
	}

	err = tx.Commit()
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("commit: %w", err))
		return 0, err
	}

	s.tel.ReportDebug("saved run", runId, len(run.Cards))
	return runId, nil
}

// List returns the most recent runs first, at most limit of them (all if limit <= 0).
func (s Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(
		ctx,
		"select id, time, query_text, want, rank from run order by time desc, id desc limit ?",
		limit,
	)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListRuns")
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var unix int64
		var rank string
		err = rows.Scan(&run.Id, &unix, &run.Query.Text, &run.Query.Want, &rank)
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "ListRuns")
			return nil, err
		}
		run.Time = time.Unix(unix, 0)
		run.Query.Rank = mangabuff.Rank(rank)
		runs = append(runs, run)
	}
	err = rows.Err()
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListRuns")
		return nil, err
	}
	rows.Close()

	for i := range runs {
		runs[i].Cards, err = s.runCards(ctx, runs[i].Id)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s Store) runCards(ctx context.Context, runId int64) ([]*mangabuff.Card, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"select card_id, rank, name, work_name, lots from run_card where run_id = ? order by position",
		runId,
	)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetRunCards", runId)
		return nil, err
	}
	defer rows.Close()

	cards := []*mangabuff.Card{}
	for rows.Next() {
		card := &mangabuff.Card{}
		var rank, lots string
		err = rows.Scan(&card.Id, &rank, &card.Name, &card.WorkName, &lots)
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "GetRunCards", runId)
			return nil, err
		}
		card.Rank = mangabuff.Rank(rank)
		err = json.Unmarshal([]byte(lots), &card.Lots)
		if err != nil {
			s.tel.ReportWarning(report_db_query, fmt.Errorf("decode lots: %w", err), runId, card.Id)
		}
		cards = append(cards, card)
	}
	err = rows.Err()
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetRunCards", runId)
		return nil, err
	}
	return cards, nil
}
