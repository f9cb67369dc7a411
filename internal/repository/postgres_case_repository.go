package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

const uniqueViolation = "23505"

const correoColumns = `id, subject, sender_account_id, entity_id, request_type_id, urgency, received_at,
               deadline_days, radicado_entrada, radicado_salida, stage, status, gestor_id, gestor_name,
               version, created_at, updated_at, closed_at`

const flujoColumns = `id, correo_id, assignee_id, assignee_name, stage, verdict, assigned_at, finalized_at`

type postgresCaseRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCaseRepository instantiates the pgx-backed repository.
func NewPostgresCaseRepository(pool *pgxpool.Pool) CaseRepository {
	return &postgresCaseRepository{pool: pool}
}

func (r *postgresCaseRepository) Create(ctx context.Context, correo *domain.Correo) error {
	const query = `
        INSERT INTO correos (id, subject, sender_account_id, entity_id, request_type_id, urgency, received_at,
            deadline_days, radicado_entrada, radicado_salida, stage, status, gestor_id, gestor_name, version,
            created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,1,$15,$15)
        RETURNING version`
	err := r.pool.QueryRow(ctx, query,
		correo.ID,
		correo.Subject,
		correo.SenderAccountID,
		correo.EntityID,
		correo.RequestTypeID,
		correo.Urgency,
		correo.ReceivedAt,
		correo.DeadlineDays,
		correo.RadicadoEntrada,
		correo.RadicadoSalida,
		correo.Stage,
		correo.Status,
		correo.GestorID,
		correo.GestorName,
		correo.CreatedAt,
	).Scan(&correo.Version)
	if isUniqueViolation(err) {
		return ErrDuplicateCase
	}
	if err != nil {
		return fmt.Errorf("insert correo: %w", err)
	}
	correo.UpdatedAt = correo.CreatedAt
	return nil
}

func (r *postgresCaseRepository) LoadCase(ctx context.Context, id string) (*domain.Correo, error) {
	query := `SELECT ` + correoColumns + ` FROM correos WHERE id=$1`
	correo, err := scanCorreo(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query correo: %w", err)
	}
	return correo, nil
}

func (r *postgresCaseRepository) LoadActiveStage(ctx context.Context, caseID string) (*domain.FlujoCorreo, error) {
	if _, err := r.LoadCase(ctx, caseID); err != nil {
		return nil, err
	}
	query := `SELECT ` + flujoColumns + ` FROM flujo_correos WHERE correo_id=$1 AND finalized_at IS NULL`
	record, err := scanFlujo(r.pool.QueryRow(ctx, query, caseID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query active stage: %w", err)
	}
	return record, nil
}

func (r *postgresCaseRepository) ListStages(ctx context.Context, caseID string) ([]domain.FlujoCorreo, error) {
	if _, err := r.LoadCase(ctx, caseID); err != nil {
		return nil, err
	}
	query := `SELECT ` + flujoColumns + ` FROM flujo_correos WHERE correo_id=$1 ORDER BY assigned_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	var result []domain.FlujoCorreo
	for rows.Next() {
		record, err := scanFlujo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		result = append(result, *record)
	}
	return result, rows.Err()
}

func (r *postgresCaseRepository) SaveCaseAndStage(ctx context.Context, correo *domain.Correo, closed, opened *domain.FlujoCorreo) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := updateCorreo(ctx, tx, correo); err != nil {
			return err
		}
		if closed != nil {
			tag, err := tx.Exec(ctx, `
                UPDATE flujo_correos SET finalized_at=$1, verdict=$2
                WHERE id=$3 AND correo_id=$4 AND finalized_at IS NULL`,
				closed.FinalizedAt, closed.Verdict, closed.ID, correo.ID)
			if err != nil {
				return fmt.Errorf("close stage: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return ErrVersionConflict
			}
		}
		if opened != nil {
			_, err := tx.Exec(ctx, `
                INSERT INTO flujo_correos (`+flujoColumns+`)
                VALUES ($1,$2,$3,$4,$5,$6,$7,NULL)`,
				opened.ID, correo.ID, opened.AssigneeID, opened.AssigneeName, opened.Stage, opened.Verdict, opened.AssignedAt)
			if isUniqueViolation(err) {
				return ErrVersionConflict
			}
			if err != nil {
				return fmt.Errorf("open stage: %w", err)
			}
		}
		return nil
	})
}

func (r *postgresCaseRepository) UpdateActiveStage(ctx context.Context, correo *domain.Correo, active *domain.FlujoCorreo) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := updateCorreo(ctx, tx, correo); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
            UPDATE flujo_correos SET assignee_id=$1, assignee_name=$2, verdict=$3
            WHERE id=$4 AND correo_id=$5 AND finalized_at IS NULL`,
			active.AssigneeID, active.AssigneeName, active.Verdict, active.ID, correo.ID)
		if err != nil {
			return fmt.Errorf("update stage: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}
		return nil
	})
}

// updateCorreo writes the case under the optimistic version check and stores
// the bumped version on correo once the row matched.
func updateCorreo(ctx context.Context, tx pgx.Tx, correo *domain.Correo) error {
	const query = `
        UPDATE correos SET subject=$1, entity_id=$2, request_type_id=$3, urgency=$4, deadline_days=$5,
            radicado_entrada=$6, radicado_salida=$7, stage=$8, status=$9, gestor_id=$10, gestor_name=$11,
            closed_at=$12, updated_at=$13, version=version+1
        WHERE id=$14 AND version=$15
        RETURNING version`
	var version int64
	err := tx.QueryRow(ctx, query,
		correo.Subject,
		correo.EntityID,
		correo.RequestTypeID,
		correo.Urgency,
		correo.DeadlineDays,
		correo.RadicadoEntrada,
		correo.RadicadoSalida,
		correo.Stage,
		correo.Status,
		correo.GestorID,
		correo.GestorName,
		correo.ClosedAt,
		correo.UpdatedAt,
		correo.ID,
		correo.Version,
	).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM correos WHERE id=$1)`, correo.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check correo: %w", err)
		}
		if !exists {
			return ErrCaseNotFound
		}
		return ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("update correo: %w", err)
	}
	correo.Version = version
	return nil
}

func (r *postgresCaseRepository) ListCases(ctx context.Context, filter CaseFilter) ([]domain.Correo, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.EntityID != nil {
		args = append(args, *filter.EntityID)
		clauses = append(clauses, fmt.Sprintf("entity_id=$%d", len(args)))
	}
	if filter.RequestTypeID != nil {
		args = append(args, *filter.RequestTypeID)
		clauses = append(clauses, fmt.Sprintf("request_type_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM flujo_correos f WHERE f.correo_id=correos.id AND f.finalized_at IS NULL AND f.assignee_id=$%d)",
			len(args)))
	}
	if len(filter.Urgencies) > 0 {
		placeholders := make([]string, len(filter.Urgencies))
		for i, urgency := range filter.Urgencies {
			args = append(args, urgency)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("urgency IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Stages) > 0 {
		placeholders := make([]string, len(filter.Stages))
		for i, stage := range filter.Stages {
			args = append(args, stage)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("stage IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.ReceivedFrom != nil {
		args = append(args, *filter.ReceivedFrom)
		clauses = append(clauses, fmt.Sprintf("received_at >= $%d", len(args)))
	}
	if filter.ReceivedTo != nil {
		args = append(args, *filter.ReceivedTo)
		clauses = append(clauses, fmt.Sprintf("received_at <= $%d", len(args)))
	}
	if value := strings.TrimSpace(filter.SearchValue); value != "" {
		args = append(args, "%"+strings.ToLower(value)+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE $%d", searchColumn(filter.SearchField), len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM correos WHERE %s ORDER BY received_at DESC, id ASC`,
		correoColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query correos: %w", err)
	}
	defer rows.Close()

	var result []domain.Correo
	for rows.Next() {
		correo, err := scanCorreo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan correo: %w", err)
		}
		result = append(result, *correo)
	}
	return result, rows.Err()
}

func searchColumn(field SearchField) string {
	switch field {
	case SearchSender:
		return "sender_account_id"
	case SearchRadicadoEntrada:
		return "radicado_entrada"
	case SearchRadicadoSalida:
		return "radicado_salida"
	case SearchID:
		return "id"
	default:
		return "subject"
	}
}

func scanCorreo(row pgx.Row) (*domain.Correo, error) {
	var correo domain.Correo
	if err := row.Scan(
		&correo.ID,
		&correo.Subject,
		&correo.SenderAccountID,
		&correo.EntityID,
		&correo.RequestTypeID,
		&correo.Urgency,
		&correo.ReceivedAt,
		&correo.DeadlineDays,
		&correo.RadicadoEntrada,
		&correo.RadicadoSalida,
		&correo.Stage,
		&correo.Status,
		&correo.GestorID,
		&correo.GestorName,
		&correo.Version,
		&correo.CreatedAt,
		&correo.UpdatedAt,
		&correo.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &correo, nil
}

func scanFlujo(row pgx.Row) (*domain.FlujoCorreo, error) {
	var record domain.FlujoCorreo
	if err := row.Scan(
		&record.ID,
		&record.CorreoID,
		&record.AssigneeID,
		&record.AssigneeName,
		&record.Stage,
		&record.Verdict,
		&record.AssignedAt,
		&record.FinalizedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
