package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/completion"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/lifecycle"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/pkg/tracing"
)

// UseCase orquesta el ciclo de vida de los documentos logísticos: valida la entrada,
// hidrata las ubicaciones del catálogo, deja que la máquina de estados fije Status
// y persiste dentro de una transacción con la fila bloqueada.
type UseCase struct {
	txRunner     TxRunner
	docRepo      repository.DocumentRepository
	locationRepo repository.LocationRepository
	materialRepo repository.MaterialRepository
	eval         *completion.Evaluator
	sm           *lifecycle.StateMachine
	observers    []Observer
	log          zerolog.Logger
	now          func() time.Time
}

// NewUseCase construye el caso de uso. docRepo se usa para lecturas fuera de transacción.
func NewUseCase(
	txRunner TxRunner,
	docRepo repository.DocumentRepository,
	locationRepo repository.LocationRepository,
	materialRepo repository.MaterialRepository,
	eval *completion.Evaluator,
	log zerolog.Logger,
	observers ...Observer,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		docRepo:      docRepo,
		locationRepo: locationRepo,
		materialRepo: materialRepo,
		eval:         eval,
		sm:           lifecycle.New(eval),
		observers:    observers,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create registra un documento nuevo. Nace PENDING: sin identidad persistida no puede estar completo.
// El Status enviado por el cliente se ignora.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	ctx, span := tracing.Start(ctx, "documents.create", attribute.String("document.kind", in.Kind))
	defer span.End()

	kind := entity.DocumentKind(strings.ToUpper(strings.TrimSpace(in.Kind)))
	if !kind.Valid() {
		return nil, domain.NewValidationError("kind", "tipo de documento desconocido")
	}
	now := uc.now()
	doc := &entity.Document{
		Kind:          kind,
		OriginID:      strings.TrimSpace(in.OriginID),
		DestinationID: strings.TrimSpace(in.DestinationID),
		Fields:        in.Fields,
		Evidence:      in.Evidence,
		Lines:         toLineItems(in.Lines),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.prepare(ctx, doc); err != nil {
		tracing.Fail(span, "documento inválido", err)
		return nil, err
	}
	if err := uc.sm.OnSave("", doc); err != nil {
		return nil, err
	}
	doc.ID = uuid.New().String()
	assignLineIDs(doc)
	span.SetAttributes(attribute.String("document.id", doc.ID))

	err := uc.txRunner.RunDocuments(ctx, func(docRepo repository.DocumentRepository) error {
		return docRepo.Create(ctx, doc)
	})
	if err != nil {
		tracing.Fail(span, "no se pudo crear el documento", err)
		return nil, fmt.Errorf("create document: %w", err)
	}
	uc.log.Debug().Str("document_id", doc.ID).Str("kind", string(doc.Kind)).Msg("documento creado")
	return uc.toResponse(doc), nil
}

// Update reemplaza los datos editables y recalcula el estado. Un documento AUDITED
// devuelve domain.ErrImmutableState y no se escribe nada.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	ctx, span := tracing.Start(ctx, "documents.update", attribute.String("document.id", id))
	defer span.End()

	var saved *entity.Document
	err := uc.txRunner.RunDocuments(ctx, func(docRepo repository.DocumentRepository) error {
		cur, err := docRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		if cur.IsAudited() {
			return domain.ErrImmutableState
		}
		next := cur.Clone()
		applyUpdate(&next, in)
		if err := uc.prepare(ctx, &next); err != nil {
			return err
		}
		if err := uc.sm.OnSave(cur.Status, &next); err != nil {
			return err
		}
		assignLineIDs(&next)
		next.UpdatedAt = uc.now()
		if err := docRepo.Update(ctx, &next); err != nil {
			return err
		}
		saved = &next
		return nil
	})
	if err != nil {
		uc.rejected(span, "update", id, err)
		return nil, err
	}
	uc.log.Debug().Str("document_id", id).Str("status", string(saved.Status)).Msg("documento actualizado")
	return uc.toResponse(saved), nil
}

// Delete elimina (borrado lógico) un documento no auditado.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.Start(ctx, "documents.delete", attribute.String("document.id", id))
	defer span.End()

	err := uc.txRunner.RunDocuments(ctx, func(docRepo repository.DocumentRepository) error {
		cur, err := docRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		if err := uc.sm.CheckDelete(cur); err != nil {
			return err
		}
		return docRepo.SoftDelete(ctx, id, uc.now())
	})
	if err != nil {
		uc.rejected(span, "delete", id, err)
		return err
	}
	uc.log.Info().Str("document_id", id).Msg("documento eliminado")
	return nil
}

// Audit bloquea un documento COMPLETE registrando quién y cuándo, en una sola transacción.
func (uc *UseCase) Audit(ctx context.Context, id, actor string) (*dto.DocumentResponse, error) {
	ctx, span := tracing.Start(ctx, "documents.audit",
		attribute.String("document.id", id), attribute.String("document.actor", actor))
	defer span.End()

	var saved *entity.Document
	err := uc.txRunner.RunDocuments(ctx, func(docRepo repository.DocumentRepository) error {
		doc, err := docRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		if err := uc.sm.Audit(doc, actor, uc.now()); err != nil {
			return err
		}
		if err := docRepo.Update(ctx, doc); err != nil {
			return err
		}
		saved = doc
		return nil
	})
	if err != nil {
		uc.rejected(span, "audit", id, err)
		return nil, err
	}
	for _, o := range uc.observers {
		o.DocumentAudited(ctx, saved.Clone())
	}
	return uc.toResponse(saved), nil
}

// Cancel cierra un embarque no auditado.
func (uc *UseCase) Cancel(ctx context.Context, id, actor string) (*dto.DocumentResponse, error) {
	ctx, span := tracing.Start(ctx, "documents.cancel", attribute.String("document.id", id))
	defer span.End()

	var saved *entity.Document
	err := uc.txRunner.RunDocuments(ctx, func(docRepo repository.DocumentRepository) error {
		doc, err := docRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		if err := uc.sm.Cancel(doc, actor, uc.now()); err != nil {
			return err
		}
		if err := docRepo.Update(ctx, doc); err != nil {
			return err
		}
		saved = doc
		return nil
	})
	if err != nil {
		uc.rejected(span, "cancel", id, err)
		return nil, err
	}
	for _, o := range uc.observers {
		o.DocumentCancelled(ctx, saved.Clone())
	}
	return uc.toResponse(saved), nil
}

// Get obtiene un documento por ID, con lo que le falta para completarse.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if _, err := uc.hydrate(ctx, doc); err != nil {
		return nil, err
	}
	return uc.toResponse(doc), nil
}

// List lista documentos filtrando por tipo y estado.
func (uc *UseCase) List(ctx context.Context, kind, status string, page dto.PageRequest) (*dto.DocumentListResponse, error) {
	page.DefaultPage()
	filter := repository.DocumentFilter{
		Kind:   entity.DocumentKind(strings.ToUpper(kind)),
		Status: entity.DocumentStatus(strings.ToUpper(status)),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, domain.NewValidationError("kind", "tipo de documento desconocido")
	}
	list, err := uc.docRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DocumentResponse, 0, len(list))
	for _, doc := range list {
		if _, err := uc.hydrate(ctx, doc); err != nil {
			return nil, err
		}
		items = append(items, *uc.toResponse(doc))
	}
	return &dto.DocumentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// prepare normaliza, valida e hidrata el documento antes de evaluarlo.
func (uc *UseCase) prepare(ctx context.Context, doc *entity.Document) error {
	normalize(doc)
	if err := validateLines(doc.Lines); err != nil {
		return err
	}
	unknown, err := uc.hydrate(ctx, doc)
	if err != nil {
		return err
	}
	if len(unknown) > 0 {
		return domain.NewValidationError(unknown[0], "ubicación no existe")
	}
	seen := make(map[string]bool, len(doc.Lines))
	for i, l := range doc.Lines {
		if seen[l.MaterialID] {
			continue
		}
		m, err := uc.materialRepo.GetByID(ctx, l.MaterialID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NewValidationError(fmt.Sprintf("lines[%d].material_id", i), "material no existe")
		}
		seen[l.MaterialID] = true
	}
	return nil
}

// hydrate carga origen, destino y contrapartes desde el catálogo. Devuelve los
// campos cuya ubicación no existe.
func (uc *UseCase) hydrate(ctx context.Context, doc *entity.Document) ([]string, error) {
	ids := make([]string, 0, 2+len(doc.Lines))
	for _, id := range []string{doc.OriginID, doc.DestinationID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	for _, l := range doc.Lines {
		if l.CounterpartyID != "" {
			ids = append(ids, l.CounterpartyID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	locs, err := uc.locationRepo.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	var unknown []string
	doc.Origin, doc.Destination = nil, nil
	if doc.OriginID != "" {
		if doc.Origin = locs[doc.OriginID]; doc.Origin == nil {
			unknown = append(unknown, entity.FieldOriginID)
		}
	}
	if doc.DestinationID != "" {
		if doc.Destination = locs[doc.DestinationID]; doc.Destination == nil {
			unknown = append(unknown, entity.FieldDestinationID)
		}
	}
	for i := range doc.Lines {
		l := &doc.Lines[i]
		l.Counterparty = nil
		if l.CounterpartyID == "" {
			continue
		}
		if l.Counterparty = locs[l.CounterpartyID]; l.Counterparty == nil {
			unknown = append(unknown, fmt.Sprintf("lines[%d].counterparty_id", i))
		}
	}
	return unknown, nil
}

// rejected registra el rechazo en el span y en el log. Los errores de dominio son esperables: nivel warn.
func (uc *UseCase) rejected(span trace.Span, op, id string, err error) {
	tracing.Fail(span, "documents."+op, err)
	uc.log.Warn().Err(err).Str("document_id", id).Str("op", op).Msg("operación sobre documento rechazada")
}

func (uc *UseCase) toResponse(doc *entity.Document) *dto.DocumentResponse {
	out := &dto.DocumentResponse{
		ID:            doc.ID,
		Kind:          string(doc.Kind),
		Status:        string(doc.Status),
		OriginID:      doc.OriginID,
		DestinationID: doc.DestinationID,
		Fields:        doc.Fields,
		Evidence:      doc.Evidence,
		Lines:         make([]dto.LineItemResponse, 0, len(doc.Lines)),
		AuditedBy:     doc.AuditedBy,
		AuditedAt:     doc.AuditedAt,
		CancelledBy:   doc.CancelledBy,
		CancelledAt:   doc.CancelledAt,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
	for _, l := range doc.Lines {
		out.Lines = append(out.Lines, dto.LineItemResponse{
			ID:             l.ID,
			MaterialID:     l.MaterialID,
			CounterpartyID: l.CounterpartyID,
			WeightIn:       l.WeightIn,
			WeightOut:      l.WeightOut,
		})
	}
	if doc.Status == entity.StatusPending {
		m := uc.eval.Missing(doc)
		if !m.Empty() {
			out.Missing = &dto.MissingResponse{Fields: m.Fields, Evidence: m.Evidence, Lines: m.Lines}
		}
	}
	return out
}

func applyUpdate(doc *entity.Document, in dto.UpdateDocumentRequest) {
	if in.OriginID != nil {
		doc.OriginID = strings.TrimSpace(*in.OriginID)
	}
	if in.DestinationID != nil {
		doc.DestinationID = strings.TrimSpace(*in.DestinationID)
	}
	if in.Fields != nil {
		doc.Fields = in.Fields
	}
	if in.Evidence != nil {
		doc.Evidence = in.Evidence
	}
	if in.Lines != nil {
		doc.Lines = toLineItems(in.Lines)
	}
}

// normalize recorta espacios, descarta valores vacíos y saca del mapa los escalares con columna propia.
func normalize(doc *entity.Document) {
	fields := make(map[string]string, len(doc.Fields))
	for k, v := range doc.Fields {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" || k == entity.FieldOriginID || k == entity.FieldDestinationID {
			continue
		}
		fields[k] = v
	}
	doc.Fields = fields
	evidence := make(map[string]string, len(doc.Evidence))
	for slot, ref := range doc.Evidence {
		if slot, ref = strings.TrimSpace(slot), strings.TrimSpace(ref); slot != "" && ref != "" {
			evidence[slot] = ref
		}
	}
	doc.Evidence = evidence
	for i := range doc.Lines {
		doc.Lines[i].MaterialID = strings.TrimSpace(doc.Lines[i].MaterialID)
		doc.Lines[i].CounterpartyID = strings.TrimSpace(doc.Lines[i].CounterpartyID)
		doc.Lines[i].DocumentID = doc.ID
	}
}

func validateLines(lines []entity.LineItem) error {
	for i, l := range lines {
		if l.MaterialID == "" {
			return domain.NewValidationError(fmt.Sprintf("lines[%d].material_id", i), "requerido")
		}
		if l.WeightIn.IsNegative() {
			return domain.NewValidationError(fmt.Sprintf("lines[%d].weight_in", i), "no puede ser negativo")
		}
		if l.WeightOut.IsNegative() {
			return domain.NewValidationError(fmt.Sprintf("lines[%d].weight_out", i), "no puede ser negativo")
		}
		if !entity.FitsQuantity(l.WeightIn) {
			return domain.NewValidationError(fmt.Sprintf("lines[%d].weight_in", i), "máximo 3 decimales y 11 enteros")
		}
		if !entity.FitsQuantity(l.WeightOut) {
			return domain.NewValidationError(fmt.Sprintf("lines[%d].weight_out", i), "máximo 3 decimales y 11 enteros")
		}
	}
	return nil
}

func toLineItems(in []dto.LineItemRequest) []entity.LineItem {
	out := make([]entity.LineItem, 0, len(in))
	for _, l := range in {
		out = append(out, entity.LineItem{
			MaterialID:     l.MaterialID,
			CounterpartyID: l.CounterpartyID,
			WeightIn:       l.WeightIn,
			WeightOut:      l.WeightOut,
		})
	}
	return out
}

func assignLineIDs(doc *entity.Document) {
	for i := range doc.Lines {
		if doc.Lines[i].ID == "" {
			doc.Lines[i].ID = uuid.New().String()
		}
		doc.Lines[i].DocumentID = doc.ID
	}
}
