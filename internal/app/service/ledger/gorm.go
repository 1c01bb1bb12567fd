package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/pkg/logctx"
	"github.com/fatflowers/sagepay/pkg/tool"
	"github.com/fatflowers/sagepay/pkg/types"
)

type GormLedger struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewGormLedger(db *gorm.DB, log *zap.SugaredLogger) *GormLedger {
	return &GormLedger{db: db, log: log}
}

func (l *GormLedger) Save(ctx context.Context, tx *models.Transaction) error {
	if tx == nil {
		return fmt.Errorf("nil transaction")
	}
	if tx.ID == "" {
		tx.ID = tool.GenerateUUIDV7()
	}
	if tx.VendorTxCode == "" {
		tx.VendorTxCode = tool.GenerateVendorTxCode()
	}
	if err := l.db.WithContext(ctx).Omit(clause.Associations).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

func (l *GormLedger) preloaded(ctx context.Context) *gorm.DB {
	return l.db.WithContext(ctx).Preload("Registration").Preload("Notification")
}

func (l *GormLedger) FindByProcessorID(ctx context.Context, vpsTxID string) (*models.Transaction, error) {
	if vpsTxID == "" {
		return nil, ErrRecordNotFound
	}
	var t models.Transaction
	if err := l.preloaded(ctx).Where("vps_tx_id = ?", vpsTxID).First(&t).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

func (l *GormLedger) FindByToken(ctx context.Context, token string) (*models.Transaction, error) {
	var t models.Transaction
	err := l.preloaded(ctx).
		Joins("JOIN sagepay_notification_result nr ON nr.transaction_id = sagepay_transaction.id").
		Where("nr.token = ? AND nr.hash_match = ?", token, true).
		Order("sagepay_transaction.created_at ASC").
		First(&t).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

func (l *GormLedger) AttachRegistration(ctx context.Context, txID string, r *models.RegistrationResult) error {
	if r == nil || r.VPSTxID == "" {
		return fmt.Errorf("registration result without VPSTxId")
	}
	return l.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		res := db.Model(&models.Transaction{}).Where("id = ?", txID).Update("vps_tx_id", r.VPSTxID)
		if res.Error != nil {
			return fmt.Errorf("failed to set vps_tx_id: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		if r.ID == "" {
			r.ID = tool.GenerateUUIDV7()
		}
		r.TransactionID = txID
		if err := db.Create(r).Error; err != nil {
			return fmt.Errorf("failed to save registration result: %w", err)
		}
		return nil
	})
}

// AttachNotification locks the transaction row so concurrent deliveries for
// the same VPSTxId apply CanReplace one after the other.
func (l *GormLedger) AttachNotification(ctx context.Context, txID string, n *models.NotificationResult) error {
	if n == nil {
		return fmt.Errorf("nil notification result")
	}
	return l.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var t models.Transaction
		if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", txID).First(&t).Error; err != nil {
			return mapNotFound(err)
		}

		var stored models.NotificationResult
		err := db.Where("transaction_id = ?", txID).First(&stored).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if n.ID == "" {
				n.ID = tool.GenerateUUIDV7()
			}
			n.TransactionID = txID
			if err := db.Create(n).Error; err != nil {
				return fmt.Errorf("failed to save notification result: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("failed to load notification result: %w", err)
		}

		if !n.CanReplace(&stored) {
			logctx.FromCtx(ctx, l.log).Warnw("sagepay_notification_conflict",
				"vps_tx_id", stored.VPSTxID,
				"stored_status", stored.Status,
				"incoming_status", n.Status,
				"incoming_hash_match", n.HashMatch,
			)
			return ErrNotificationConflict
		}
		n.ID = stored.ID
		n.TransactionID = txID
		n.CreatedAt = stored.CreatedAt
		if err := db.Save(n).Error; err != nil {
			return fmt.Errorf("failed to replace notification result: %w", err)
		}
		return nil
	})
}

func (l *GormLedger) ClaimFinalization(ctx context.Context, txID string) (bool, error) {
	res := l.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND finalized_at IS NULL", txID).
		Update("finalized_at", time.Now())
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim finalization: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (l *GormLedger) ReleaseFinalization(ctx context.Context, txID string) error {
	if err := l.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ?", txID).
		Update("finalized_at", nil).Error; err != nil {
		return fmt.Errorf("failed to release finalization: %w", err)
	}
	return nil
}

// ScanTransactionsRequest drives the admin listing.
type ScanTransactionsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanTransactionsResponse struct {
	Items []*models.Transaction `json:"items"`
	Total int64                 `json:"total"`
}

// filtersAnd is a helper to combine multiple CommonFilter into a single clause.Expression
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

var sortableColumns = map[string]struct{}{
	"created_at": {}, "updated_at": {}, "amount": {}, "finalized_at": {}, "order_number": {},
}

// ScanTransactions lists transactions with their results, newest first
// unless asked otherwise.
func (l *GormLedger) ScanTransactions(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}
	if _, ok := sortableColumns[req.SortBy]; !ok {
		req.SortBy = "created_at"
	}
	for _, f := range req.Filters {
		if !types.IsFilterableColumn(f.Field) {
			return nil, fmt.Errorf("%w: unsupported filter field %q", ErrInvalidScan, f.Field)
		}
	}

	q := l.db.WithContext(ctx).Model(&models.Transaction{})
	if len(req.Filters) > 0 {
		q = q.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	var rows []*models.Transaction
	err := q.Preload("Registration").Preload("Notification").
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}}).
		Limit(req.Size).
		Offset(req.From).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &ScanTransactionsResponse{Items: rows, Total: total}, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}
