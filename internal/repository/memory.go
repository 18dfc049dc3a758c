package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/lumakart/fulfillment-service/internal/domain"
	pkgdto "github.com/lumakart/fulfillment-service/pkg/dto"
	"github.com/lumakart/fulfillment-service/pkg/errs"
)

// In-memory repositories backing tests and the local environment. Reads
// hand out copies so callers can never mutate stored state in place.

type MemoryOrderRepository struct {
	mu          sync.RWMutex
	orders      map[string]*domain.Order
	items       map[string][]domain.OrderItem
	history     map[string][]domain.StatusHistoryEntry
	instruments map[string][]domain.PaymentInstrument
	historySeq  int64
}

func CreateMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders:      make(map[string]*domain.Order),
		items:       make(map[string][]domain.OrderItem),
		history:     make(map[string][]domain.StatusHistoryEntry),
		instruments: make(map[string][]domain.PaymentInstrument),
	}
}

// HandleTrx runs fn against the same repository. The memory store applies
// each statement atomically under its lock but offers no rollback; it
// exists for tests and local runs, not production.
func (r *MemoryOrderRepository) HandleTrx(ctx context.Context, fn func(ctx context.Context, repo OrderRepository) error) error {
	return fn(ctx, r)
}

func (r *MemoryOrderRepository) AddOrder(ctx context.Context, data domain.Order) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[data.ID]; ok {
		return errs.ErrConflict
	}

	stored := data
	stored.Items = nil
	stored.StatusHistory = nil
	r.orders[data.ID] = &stored

	return nil
}

func (r *MemoryOrderRepository) AddOrderItems(ctx context.Context, data []domain.OrderItem) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range data {
		r.items[item.OrderID] = append(r.items[item.OrderID], item)
	}

	return nil
}

func (r *MemoryOrderRepository) GetOrderByID(ctx context.Context, id string) (data domain.Order, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.orders[id]
	if !ok {
		return data, errs.ErrNotFound
	}

	data = *stored
	data.Items = append([]domain.OrderItem(nil), r.items[id]...)
	data.StatusHistory = append([]domain.StatusHistoryEntry(nil), r.history[id]...)

	return data, nil
}

func (r *MemoryOrderRepository) GetOrders(ctx context.Context, filter pkgdto.Filter) (data []domain.Order, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stored := range r.orders {
		if filter.OrderStatus != "" && stored.OrderStatus != filter.OrderStatus {
			continue
		}
		if filter.PaymentStatus != "" && stored.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if filter.UserID != "" && stored.UserID != filter.UserID {
			continue
		}
		data = append(data, *stored)
	}

	sort.Slice(data, func(i, j int) bool { return data[i].CreatedAt > data[j].CreatedAt })

	return data, nil
}

func (r *MemoryOrderRepository) UpdateOrderStatus(ctx context.Context, orderID string, status string) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[orderID]
	if !ok {
		return errs.ErrNotFound
	}
	stored.OrderStatus = status

	return nil
}

func (r *MemoryOrderRepository) UpdatePaymentStatus(ctx context.Context, orderID string, status string, paidAt *int64) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[orderID]
	if !ok {
		return errs.ErrNotFound
	}
	stored.PaymentStatus = status
	if paidAt != nil {
		stored.PaidAt = paidAt
	}

	return nil
}

func (r *MemoryOrderRepository) MarkRefundEligible(ctx context.Context, orderID string) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[orderID]
	if !ok {
		return errs.ErrNotFound
	}
	stored.RefundEligible = true

	return nil
}

func (r *MemoryOrderRepository) AddStatusHistory(ctx context.Context, entry domain.StatusHistoryEntry) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.historySeq++
	entry.ID = r.historySeq
	r.history[entry.OrderID] = append(r.history[entry.OrderID], entry)

	return nil
}

func (r *MemoryOrderRepository) AddPaymentInstrument(ctx context.Context, data domain.PaymentInstrument) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.instruments[data.OrderID] = append(r.instruments[data.OrderID], data)

	return nil
}

func (r *MemoryOrderRepository) GetActiveInstrument(ctx context.Context, orderID string) (data domain.PaymentInstrument, found bool, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.instruments[orderID]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].DeletedAt == nil {
			return list[i], true, nil
		}
	}

	return data, false, nil
}

func (r *MemoryOrderRepository) DeactivateInstruments(ctx context.Context, orderID string) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := int64(1)
	list := r.instruments[orderID]
	for i := range list {
		if list[i].DeletedAt == nil {
			list[i].DeletedAt = &now
		}
	}

	return nil
}

func (r *MemoryOrderRepository) GetExpiredWaitingOrders(ctx context.Context, now int64) (data []domain.Order, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, stored := range r.orders {
		if stored.PaymentStatus != domain.PaymentWaiting {
			continue
		}
		for _, inst := range r.instruments[id] {
			if inst.DeletedAt == nil && inst.ExpiredAt < now {
				data = append(data, *stored)
				break
			}
		}
	}

	return data, nil
}

type MemoryRefundRepository struct {
	mu       sync.RWMutex
	refunds  map[string]*domain.Refund
	evidence map[string][]domain.RefundEvidence
	history  map[string][]domain.RefundStatusEntry
	seq      int64
}

func CreateMemoryRefundRepository() *MemoryRefundRepository {
	return &MemoryRefundRepository{
		refunds:  make(map[string]*domain.Refund),
		evidence: make(map[string][]domain.RefundEvidence),
		history:  make(map[string][]domain.RefundStatusEntry),
	}
}

func (r *MemoryRefundRepository) AddRefund(ctx context.Context, data domain.Refund) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.refunds[data.ID]; ok {
		return errs.ErrConflict
	}

	stored := data
	stored.Evidence = nil
	stored.StatusHistory = nil
	r.refunds[data.ID] = &stored

	return nil
}

func (r *MemoryRefundRepository) AddRefundEvidence(ctx context.Context, data []domain.RefundEvidence) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ev := range data {
		r.evidence[ev.RefundID] = append(r.evidence[ev.RefundID], ev)
	}

	return nil
}

func (r *MemoryRefundRepository) AddRefundStatusHistory(ctx context.Context, entry domain.RefundStatusEntry) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	entry.ID = r.seq
	r.history[entry.RefundID] = append(r.history[entry.RefundID], entry)

	return nil
}

func (r *MemoryRefundRepository) GetRefundByID(ctx context.Context, id string) (data domain.Refund, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.refunds[id]
	if !ok {
		return data, errs.ErrNotFound
	}

	data = *stored
	data.Evidence = append([]domain.RefundEvidence(nil), r.evidence[id]...)
	data.StatusHistory = append([]domain.RefundStatusEntry(nil), r.history[id]...)

	return data, nil
}

func (r *MemoryRefundRepository) GetRefunds(ctx context.Context, filter pkgdto.Filter) (data []domain.Refund, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stored := range r.refunds {
		if filter.OrderStatus != "" && stored.Status != filter.OrderStatus {
			continue
		}
		data = append(data, *stored)
	}

	sort.Slice(data, func(i, j int) bool { return data[i].CreatedAt > data[j].CreatedAt })

	return data, nil
}

func (r *MemoryRefundRepository) GetActiveRefundByOrderID(ctx context.Context, orderID string) (data domain.Refund, found bool, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stored := range r.refunds {
		if stored.OrderID == orderID && !domain.IsRefundTerminal(stored.Status) {
			return *stored, true, nil
		}
	}

	return data, false, nil
}

func (r *MemoryRefundRepository) GetRefundsByOrderID(ctx context.Context, orderID string) (data []domain.Refund, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stored := range r.refunds {
		if stored.OrderID == orderID {
			data = append(data, *stored)
		}
	}

	sort.Slice(data, func(i, j int) bool { return data[i].CreatedAt < data[j].CreatedAt })

	return data, nil
}

func (r *MemoryRefundRepository) UpdateRefund(ctx context.Context, data domain.Refund) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.refunds[data.ID]
	if !ok {
		return errs.ErrNotFound
	}

	updated := data
	updated.Evidence = nil
	updated.StatusHistory = nil
	*stored = updated

	return nil
}

type MemoryVoucherRepository struct {
	mu       sync.Mutex
	vouchers map[string]*domain.Voucher
}

func CreateMemoryVoucherRepository() *MemoryVoucherRepository {
	return &MemoryVoucherRepository{
		vouchers: make(map[string]*domain.Voucher),
	}
}

func (r *MemoryVoucherRepository) AddVoucher(ctx context.Context, data domain.Voucher) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := data
	r.vouchers[data.Code] = &stored

	return nil
}

func (r *MemoryVoucherRepository) GetVoucherByCode(ctx context.Context, code string) (data domain.Voucher, found bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.vouchers[code]
	if !ok {
		return data, false, nil
	}

	return *stored, true, nil
}

func (r *MemoryVoucherRepository) ConsumeVoucher(ctx context.Context, code string, orderID string) (consumed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.vouchers[code]
	if !ok || stored.Consumed {
		return false, nil
	}

	stored.Consumed = true
	stored.OrderID = &orderID

	return true, nil
}

func (r *MemoryVoucherRepository) RestoreVoucherByOrderID(ctx context.Context, orderID string) (restored bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.vouchers {
		if stored.Consumed && stored.OrderID != nil && *stored.OrderID == orderID {
			stored.Consumed = false
			stored.OrderID = nil
			return true, nil
		}
	}

	return false, nil
}
