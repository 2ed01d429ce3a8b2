package postgres

/*
Файл telemetry_repo.go отвечает за долговременное хранение событий гейта
(guard.open / autofix.triggered / unblocked). Слой отделяет персистентность
от горячего пути проверки требований: гейт пишет в канал, сюда прилетают
уже собранные пачки.
*/

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Драйвер Postgres

	"github.com/xela07ax/dentops-gate-prototype/internal/telemetry"
)

type TelemetryRepo struct {
	db *sql.DB
}

func NewTelemetryRepo(connString string) *TelemetryRepo {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		// В main соединение проверяется через Ping
		log.Fatal(err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &TelemetryRepo{db: db}
}

// Ping проверяет доступность базы при старте
func (r *TelemetryRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WriteBatch — пакетная вставка событий (Bulk Insert).
func (r *TelemetryRepo) WriteBatch(ctx context.Context, events []telemetry.Event) error {
	if len(events) == 0 {
		return nil
	}

	// Количество колонок в таблице gate_events
	numFields := 10
	placeholderStr := ""
	vals := make([]interface{}, 0, len(events)*numFields)

	for i, e := range events {
		p := i * numFields
		placeholderStr += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d),",
			p+1, p+2, p+3, p+4, p+5, p+6, p+7, p+8, p+9, p+10)

		vals = append(vals,
			e.ID, e.TraceID, e.Type, e.ActionID,
			e.ClinicID, e.WorkspaceID, e.ServiceID,
			strings.Join(e.Missing, ","), e.DurationMs, e.Timestamp,
		)
	}

	query := fmt.Sprintf(
		"INSERT INTO gate_events (id, trace_id, type, action_id, clinic_id, workspace_id, service_id, missing, duration_ms, timestamp) VALUES %s",
		strings.TrimSuffix(placeholderStr, ","),
	)

	_, err := r.db.ExecContext(ctx, query, vals...)
	return err
}
