package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/pkg/tool"
)

// MemoryLedger keeps everything in process. Used by tests and local runs
// without a database.
type MemoryLedger struct {
	mu            sync.RWMutex
	txs           map[string]*models.Transaction
	byVendorCode  map[string]string
	byProcessorID map[string]string
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		txs:           make(map[string]*models.Transaction),
		byVendorCode:  make(map[string]string),
		byProcessorID: make(map[string]string),
	}
}

func (m *MemoryLedger) Save(_ context.Context, tx *models.Transaction) error {
	if tx == nil {
		return fmt.Errorf("nil transaction")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.ID == "" {
		tx.ID = tool.GenerateUUIDV7()
	}
	if tx.VendorTxCode == "" {
		tx.VendorTxCode = tool.GenerateVendorTxCode()
	}
	if _, dup := m.txs[tx.ID]; dup {
		return fmt.Errorf("failed to save transaction: duplicate id %s", tx.ID)
	}
	if _, dup := m.byVendorCode[tx.VendorTxCode]; dup {
		return fmt.Errorf("failed to save transaction: duplicate vendor_tx_code %s", tx.VendorTxCode)
	}
	now := time.Now()
	tx.CreatedAt, tx.UpdatedAt = now, now

	stored := clone(tx)
	stored.Registration, stored.Notification = nil, nil
	m.txs[tx.ID] = stored
	m.byVendorCode[tx.VendorTxCode] = tx.ID
	return nil
}

func (m *MemoryLedger) FindByProcessorID(_ context.Context, vpsTxID string) (*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byProcessorID[vpsTxID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return clone(m.txs[id]), nil
}

func (m *MemoryLedger) FindByToken(_ context.Context, token string) (*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *models.Transaction
	for _, t := range m.txs {
		n := t.Notification
		if n == nil || !n.HashMatch || n.Token != token {
			continue
		}
		if found == nil || t.CreatedAt.Before(found.CreatedAt) {
			found = t
		}
	}
	if found == nil {
		return nil, ErrRecordNotFound
	}
	return clone(found), nil
}

func (m *MemoryLedger) AttachRegistration(_ context.Context, txID string, r *models.RegistrationResult) error {
	if r == nil || r.VPSTxID == "" {
		return fmt.Errorf("registration result without VPSTxId")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.txs[txID]
	if !ok {
		return ErrRecordNotFound
	}
	if other, taken := m.byProcessorID[r.VPSTxID]; taken && other != txID {
		return fmt.Errorf("failed to save registration result: duplicate vps_tx_id %s", r.VPSTxID)
	}
	if r.ID == "" {
		r.ID = tool.GenerateUUIDV7()
	}
	r.TransactionID = txID
	r.CreatedAt = time.Now()

	reg := *r
	t.Registration = &reg
	t.VPSTxID = &reg.VPSTxID
	t.UpdatedAt = time.Now()
	m.byProcessorID[r.VPSTxID] = txID
	return nil
}

func (m *MemoryLedger) AttachNotification(_ context.Context, txID string, n *models.NotificationResult) error {
	if n == nil {
		return fmt.Errorf("nil notification result")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.txs[txID]
	if !ok {
		return ErrRecordNotFound
	}
	if !n.CanReplace(t.Notification) {
		return ErrNotificationConflict
	}
	now := time.Now()
	if t.Notification != nil {
		n.ID = t.Notification.ID
		n.CreatedAt = t.Notification.CreatedAt
	} else {
		if n.ID == "" {
			n.ID = tool.GenerateUUIDV7()
		}
		n.CreatedAt = now
	}
	n.TransactionID = txID
	n.UpdatedAt = now

	stored := *n
	t.Notification = &stored
	return nil
}

func (m *MemoryLedger) ClaimFinalization(_ context.Context, txID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.txs[txID]
	if !ok {
		return false, ErrRecordNotFound
	}
	if t.FinalizedAt != nil {
		return false, nil
	}
	now := time.Now()
	t.FinalizedAt = &now
	return true, nil
}

func (m *MemoryLedger) ReleaseFinalization(_ context.Context, txID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.txs[txID]
	if !ok {
		return ErrRecordNotFound
	}
	t.FinalizedAt = nil
	return nil
}

// clone copies t deeply enough that callers cannot mutate stored state.
func clone(t *models.Transaction) *models.Transaction {
	c := *t
	if t.VPSTxID != nil {
		v := *t.VPSTxID
		c.VPSTxID = &v
	}
	if t.Token != nil {
		v := *t.Token
		c.Token = &v
	}
	if t.FinalizedAt != nil {
		v := *t.FinalizedAt
		c.FinalizedAt = &v
	}
	if t.Registration != nil {
		r := *t.Registration
		c.Registration = &r
	}
	if t.Notification != nil {
		n := *t.Notification
		c.Notification = &n
	}
	return &c
}
