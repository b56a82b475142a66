package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devisflow/devisflow/internal/clients"
	"github.com/devisflow/devisflow/internal/observability"
	"github.com/devisflow/devisflow/internal/pdf"
	"github.com/devisflow/devisflow/internal/settings"
	"github.com/devisflow/devisflow/internal/shared"
)

// ClientLookup resolves a client owned by userID.
type ClientLookup interface {
	Get(ctx context.Context, userID string, id uuid.UUID) (*clients.Client, error)
}

// SettingsProvider returns the company settings of a user, creating defaults.
type SettingsProvider interface {
	Get(ctx context.Context, user *shared.User) (*settings.Settings, error)
}

// OwnerLookup loads the owner of a quote reached through a share link.
type OwnerLookup interface {
	User(ctx context.Context, id string) (*shared.User, error)
}

// Renderer produces the PDF of a document.
type Renderer interface {
	Render(ctx context.Context, doc pdf.Document) ([]byte, error)
}

// CacheInvalidator drops cached per-user read models after a mutation.
type CacheInvalidator interface {
	Bump(ctx context.Context, userID string) error
}

// EventRecorder counts workflow events.
type EventRecorder interface {
	QuoteEvent(event string)
}

// Dependencies are the collaborators of Service. Cache and Events may be nil.
type Dependencies struct {
	Clients      ClientLookup
	Settings     SettingsProvider
	Owners       OwnerLookup
	Renderer     Renderer
	Cache        CacheInvalidator
	Events       EventRecorder
	Logger       *slog.Logger
	ShareBaseURL string
}

// Service implements the quote lifecycle and the share/sign workflow.
type Service struct {
	repo Repository
	deps Dependencies
	now  func() time.Time
}

// NewService wires a Service.
func NewService(repo Repository, deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	deps.ShareBaseURL = strings.TrimRight(deps.ShareBaseURL, "/")
	return &Service{repo: repo, deps: deps, now: time.Now}
}

// Create stores a new Draft quote for user.
func (s *Service) Create(ctx context.Context, user *shared.User, req CreateQuoteRequest) (*Quote, error) {
	if _, err := s.deps.Clients.Get(ctx, user.ID, req.ClientID); err != nil {
		return nil, err
	}
	q, err := NewQuote(user.ID, user.TaxStatus, req, s.now().UTC())
	if err != nil {
		return nil, err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if err := tx.Insert(ctx, q); err != nil {
			return err
		}
		return tx.RecordEvent(ctx, s.audit(user.ID, shared.ActionQuoteCreated, q, map[string]any{
			"quote_number": q.QuoteNumber,
			"total":        q.Total.String(),
		}))
	})
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, user.ID, observability.EventCreated)
	return q, nil
}

// Get returns a quote owned by userID.
func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*Quote, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns a page of the owner's quotes, newest first, and the total count.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Quote, int, error) {
	return s.repo.List(ctx, userID, limit, offset)
}

// Update applies a partial update under a row lock. A paid quote rejects
// every update, including one that only repeats is_paid.
func (s *Service) Update(ctx context.Context, user *shared.User, id uuid.UUID, req UpdateQuoteRequest) (*Quote, error) {
	var (
		updated    *Quote
		becamePaid bool
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		q, err := tx.GetForUpdate(ctx, user.ID, id)
		if err != nil {
			return err
		}
		if q.IsPaid {
			return ErrLocked
		}
		if req.ClientID != nil && *req.ClientID != q.ClientID {
			if _, err := s.deps.Clients.Get(ctx, user.ID, *req.ClientID); err != nil {
				return err
			}
		}
		removed, err := q.ApplyUpdate(req, s.now().UTC())
		if err != nil {
			return err
		}
		if err := tx.UpdateHeader(ctx, q); err != nil {
			return err
		}
		if req.Items != nil {
			if err := tx.SaveItems(ctx, q.ID, q.Items, removed); err != nil {
				return err
			}
		}
		becamePaid = q.IsPaid
		updated = q
		return tx.RecordEvent(ctx, s.audit(user.ID, shared.ActionQuoteUpdated, q, map[string]any{
			"status":  string(q.Status),
			"is_paid": q.IsPaid,
			"total":   q.Total.String(),
		}))
	})
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, user.ID, observability.EventUpdated)
	if becamePaid {
		s.event(observability.EventPaid)
	}
	return updated, nil
}

// Share issues a fresh share link valid for ShareTokenTTL.
func (s *Service) Share(ctx context.Context, userID string, id uuid.UUID) (*ShareResponse, error) {
	var resp *ShareResponse
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		q, err := tx.GetForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		token := uuid.NewString()
		if err := q.Share(token, s.now().UTC()); err != nil {
			return err
		}
		if err := tx.UpdateHeader(ctx, q); err != nil {
			return err
		}
		resp = &ShareResponse{
			ShareURL:  s.deps.ShareBaseURL + "/sign/" + token,
			ExpiresAt: *q.ShareTokenExpiresAt,
		}
		return tx.RecordEvent(ctx, s.audit(userID, shared.ActionQuoteShared, q, map[string]any{
			"expires_at": q.ShareTokenExpiresAt,
		}))
	})
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, userID, observability.EventShared)
	return resp, nil
}

// PublicView returns the recipient projection of the quote behind token.
// It stays readable after the link has expired.
func (s *Service) PublicView(ctx context.Context, token string) (*PublicQuote, error) {
	q, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	client, err := s.deps.Clients.Get(ctx, q.UserID, q.ClientID)
	if err != nil {
		return nil, err
	}
	return toPublic(q, client), nil
}

// Sign records the recipient's signature. The expiry is checked before the
// signed state, so an expired link reports ErrExpired even once signed.
func (s *Service) Sign(ctx context.Context, token string, req SignRequest, signerIP string) (*SignResponse, error) {
	var (
		signedAt time.Time
		ownerID  string
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		q, err := tx.GetByTokenForUpdate(ctx, token)
		if err != nil {
			return err
		}
		sig := Signature{
			SignerName:    strings.TrimSpace(req.SignerName),
			SignatureData: req.SignatureData,
			SignerIP:      signerIP,
		}
		if err := q.Sign(sig, s.now().UTC()); err != nil {
			return err
		}
		if err := tx.MarkSigned(ctx, q); err != nil {
			return err
		}
		signedAt, ownerID = *q.SignedAt, q.UserID
		return tx.RecordEvent(ctx, s.audit(q.UserID, shared.ActionQuoteSigned, q, map[string]any{
			"signer_name": sig.SignerName,
			"signer_ip":   sig.SignerIP,
		}))
	})
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, ownerID, observability.EventSigned)
	return &SignResponse{Success: true, Message: "Devis signé avec succès", SignedAt: signedAt}, nil
}

// RenderPDF renders a quote owned by user.
func (s *Service) RenderPDF(ctx context.Context, user *shared.User, id uuid.UUID) ([]byte, *Quote, error) {
	q, err := s.repo.Get(ctx, user.ID, id)
	if err != nil {
		return nil, nil, err
	}
	out, err := s.render(ctx, q, user)
	if err != nil {
		return nil, nil, err
	}
	return out, q, nil
}

// PublicPDF renders the quote behind a share link, expired or not.
func (s *Service) PublicPDF(ctx context.Context, token string) ([]byte, *Quote, error) {
	q, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	owner, err := s.deps.Owners.User(ctx, q.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("load quote owner: %w", err)
	}
	out, err := s.render(ctx, q, owner)
	if err != nil {
		return nil, nil, err
	}
	return out, q, nil
}

func (s *Service) render(ctx context.Context, q *Quote, owner *shared.User) ([]byte, error) {
	client, err := s.deps.Clients.Get(ctx, q.UserID, q.ClientID)
	if err != nil {
		return nil, err
	}
	st, err := s.deps.Settings.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	out, err := s.deps.Renderer.Render(ctx, buildDocument(q, client, st, owner))
	if err != nil {
		s.event(observability.EventPDFFailed)
		s.deps.Logger.Error("render quote pdf",
			slog.String("quote_id", q.ID.String()),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrRendering, err)
	}
	return out, nil
}

func (s *Service) audit(actorID, action string, q *Quote, meta map[string]any) shared.AuditLog {
	return shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   shared.EntityQuote,
		EntityID: q.ID.String(),
		Meta:     meta,
		At:       q.UpdatedAt,
	}
}

func (s *Service) afterMutation(ctx context.Context, userID, event string) {
	s.event(event)
	if s.deps.Cache == nil {
		return
	}
	if err := s.deps.Cache.Bump(ctx, userID); err != nil && !errors.Is(err, context.Canceled) {
		s.deps.Logger.Warn("invalidate dashboard cache",
			slog.String("user_id", userID),
			slog.Any("error", err))
	}
}

func (s *Service) event(name string) {
	if s.deps.Events != nil {
		s.deps.Events.QuoteEvent(name)
	}
}

func toPublic(q *Quote, client *clients.Client) *PublicQuote {
	items := q.SortedItems()
	out := &PublicQuote{
		QuoteNumber:   q.QuoteNumber,
		ClientName:    client.Name,
		ClientEmail:   client.Email,
		ClientCompany: client.Company,
		Currency:      q.Currency,
		Subtotal:      q.Subtotal,
		TaxRate:       q.TaxRate,
		TaxAmount:     q.TaxAmount,
		Total:         q.Total,
		Notes:         q.Notes,
		PaymentTerms:  q.PaymentTerms,
		Items:         make([]PublicItem, 0, len(items)),
		Status:        q.Status,
		IsSigned:      q.IsSigned(),
		SignedAt:      q.SignedAt,
		SignerName:    q.SignerName,
		CreatedAt:     q.CreatedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, PublicItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	return out
}
