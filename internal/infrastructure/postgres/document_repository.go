package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/inventory"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo implementación de DocumentRepository sobre PostgreSQL (usable con pool o tx).
// Cabecera en documents, partidas en document_lines; escalares y evidencias en JSONB.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `
	id, kind, status, COALESCE(origin_id, ''), COALESCE(destination_id, ''), fields, evidence,
	audited_by, audited_at, cancelled_by, cancelled_at, created_at, updated_at, deleted_at`

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	err := row.Scan(
		&d.ID, &d.Kind, &d.Status, &d.OriginID, &d.DestinationID, &d.Fields, &d.Evidence,
		&d.AuditedBy, &d.AuditedAt, &d.CancelledBy, &d.CancelledAt, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create persiste cabecera y partidas.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (id, kind, status, origin_id, destination_id, fields, evidence,
		                       audited_by, audited_at, cancelled_by, cancelled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.Kind, doc.Status, nullIfEmpty(doc.OriginID), nullIfEmpty(doc.DestinationID),
		jsonMap(doc.Fields), jsonMap(doc.Evidence),
		doc.AuditedBy, doc.AuditedAt, doc.CancelledBy, doc.CancelledAt, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", mapWriteError("document", err))
	}
	return r.insertLines(ctx, doc)
}

func (r *DocumentRepo) insertLines(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO document_lines (id, document_id, position, material_id, counterparty_id, weight_in, weight_out)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i, l := range doc.Lines {
		_, err := r.q.Exec(ctx, query, l.ID, doc.ID, i, l.MaterialID, nullIfEmpty(l.CounterpartyID), l.WeightIn, l.WeightOut)
		if err != nil {
			return fmt.Errorf("insert document line: %w", mapWriteError(fmt.Sprintf("lines[%d]", i), err))
		}
	}
	return nil
}

// GetByID obtiene un documento no eliminado con sus partidas.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	return r.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 AND deleted_at IS NULL`, id)
}

// GetForUpdate obtiene el documento y bloquea su fila (SELECT FOR UPDATE).
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id)
}

func (r *DocumentRepo) get(ctx context.Context, query, id string) (*entity.Document, error) {
	doc, err := scanDocument(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.Document{doc}); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update reescribe cabecera y partidas. La guarda status <> 'AUDITED' va en el mismo UPDATE:
// si la fila ya estaba auditada no se toca nada.
func (r *DocumentRepo) Update(ctx context.Context, doc *entity.Document) error {
	query := `
		UPDATE documents SET status = $2, origin_id = $3, destination_id = $4, fields = $5, evidence = $6,
		       audited_by = $7, audited_at = $8, cancelled_by = $9, cancelled_at = $10, updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL AND status <> 'AUDITED'`
	cmd, err := r.q.Exec(ctx, query,
		doc.ID, doc.Status, nullIfEmpty(doc.OriginID), nullIfEmpty(doc.DestinationID),
		jsonMap(doc.Fields), jsonMap(doc.Evidence),
		doc.AuditedBy, doc.AuditedAt, doc.CancelledBy, doc.CancelledAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", mapWriteError("document", err))
	}
	if cmd.RowsAffected() == 0 {
		return r.guardError(ctx, doc.ID)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("delete document lines: %w", err)
	}
	return r.insertLines(ctx, doc)
}

// SoftDelete marca deleted_at con la misma guarda que Update.
func (r *DocumentRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE documents SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL AND status <> 'AUDITED'`, id, at)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return r.guardError(ctx, id)
	}
	return nil
}

// guardError distingue por qué un UPDATE guardado no afectó filas.
func (r *DocumentRepo) guardError(ctx context.Context, id string) error {
	var status entity.DocumentStatus
	err := r.q.QueryRow(ctx, `SELECT status FROM documents WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get document status: %w", err)
	}
	if status == entity.StatusAudited {
		return domain.ErrImmutableState
	}
	return domain.ErrNotFound
}

// List lista documentos no eliminados, más recientes primero.
func (r *DocumentRepo) List(ctx context.Context, filter repository.DocumentFilter) ([]*entity.Document, error) {
	where := []string{"deleted_at IS NULL"}
	args := []any{}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		documentColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var list []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, doc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadLines carga las partidas de todos los documentos en una sola consulta.
func (r *DocumentRepo) loadLines(ctx context.Context, docs []*entity.Document) error {
	if len(docs) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Document, len(docs))
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
		ids = append(ids, d.ID)
		d.Lines = []entity.LineItem{}
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, document_id, material_id, COALESCE(counterparty_id, ''), weight_in, weight_out
		FROM document_lines WHERE document_id = ANY($1) ORDER BY document_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list document lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.LineItem
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.MaterialID, &l.CounterpartyID, &l.WeightIn, &l.WeightOut); err != nil {
			return fmt.Errorf("scan document line: %w", err)
		}
		d := byID[l.DocumentID]
		d.Lines = append(d.Lines, l)
	}
	return rows.Err()
}

// ListReplayMovements una fila por partida de documentos vigentes con origen y destino del
// documento y las banderas de patio resueltas por JOIN.
func (r *DocumentRepo) ListReplayMovements(ctx context.Context) ([]inventory.Movement, error) {
	query := `
		SELECT d.id, l.material_id,
		       COALESCE(d.origin_id, ''), COALESCE(o.is_yard, FALSE),
		       COALESCE(d.destination_id, ''), COALESCE(dst.is_yard, FALSE),
		       l.weight_in, l.weight_out
		FROM document_lines l
		JOIN documents d ON d.id = l.document_id
		LEFT JOIN locations o ON o.id = d.origin_id
		LEFT JOIN locations dst ON dst.id = d.destination_id
		WHERE d.deleted_at IS NULL AND d.status IN ('PENDING', 'COMPLETE', 'AUDITED')
		ORDER BY d.id, l.position`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list replay movements: %w", err)
	}
	defer rows.Close()
	var out []inventory.Movement
	for rows.Next() {
		var m inventory.Movement
		if err := rows.Scan(&m.DocumentID, &m.MaterialID, &m.OriginID, &m.OriginIsYard,
			&m.DestinationID, &m.DestinationIsYard, &m.WeightIn, &m.WeightOut); err != nil {
			return nil, fmt.Errorf("scan replay movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// jsonMap evita escribir NULL en columnas JSONB NOT NULL.
func jsonMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
