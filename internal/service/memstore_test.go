package service

import (
	"context"
	"sort"
	"sync"

	"walletsystem/internal/model"
	"walletsystem/internal/repository"
)

// 内存版仓储实现，行为契约与 gorm 实现一致：
//   - FindOwned 返回快照副本（调用方拿到的是读取瞬间的余额，可能过期）
//   - DecreaseIfEnough 在互斥锁内完成"检查+扣减"，对应数据库的原子条件更新
//   - SaveBalance 盲写，对应无锁路径的丢失更新语义
//   - Create 撞幂等键返回 repository.ErrDuplicateTransaction

type memWalletStore struct {
	mu      sync.Mutex
	nextID  int64
	wallets map[int64]*model.Wallet
}

func newMemWalletStore() *memWalletStore {
	return &memWalletStore{wallets: make(map[int64]*model.Wallet)}
}

func (s *memWalletStore) Create(_ context.Context, wallet *model.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	wallet.ID = s.nextID
	saved := *wallet
	s.wallets[wallet.ID] = &saved
	return nil
}

func (s *memWalletStore) FindOwned(_ context.Context, walletID, ownerUserID int64) (*model.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, ok := s.wallets[walletID]
	if !ok || wallet.OwnerUserID != ownerUserID {
		return nil, nil
	}
	snapshot := *wallet
	return &snapshot, nil
}

func (s *memWalletStore) DecreaseIfEnough(_ context.Context, walletID, amount int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, ok := s.wallets[walletID]
	if !ok || wallet.Balance < amount {
		return 0, false, nil
	}
	wallet.Balance -= amount
	return wallet.Balance, true, nil
}

func (s *memWalletStore) IncreaseBalance(_ context.Context, walletID, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, ok := s.wallets[walletID]
	if !ok {
		return repository.ErrWalletNotFound
	}
	wallet.Balance += amount
	return nil
}

func (s *memWalletStore) SaveBalance(_ context.Context, walletID, balance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, ok := s.wallets[walletID]
	if !ok {
		return repository.ErrWalletNotFound
	}
	wallet.Balance = balance
	return nil
}

func (s *memWalletStore) balance(walletID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallets[walletID].Balance
}

type memTransactionStore struct {
	mu     sync.Mutex
	nextID int64
	byKey  map[string]*model.Transaction
}

func newMemTransactionStore() *memTransactionStore {
	return &memTransactionStore{byKey: make(map[string]*model.Transaction)}
}

func (s *memTransactionStore) Create(_ context.Context, txn *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byKey[txn.TransactionID]; ok {
		return repository.ErrDuplicateTransaction
	}
	s.nextID++
	txn.ID = s.nextID
	saved := *txn
	s.byKey[txn.TransactionID] = &saved
	return nil
}

func (s *memTransactionStore) GetByTransactionID(_ context.Context, transactionID string) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.byKey[transactionID]
	if !ok {
		return nil, nil
	}
	snapshot := *txn
	return &snapshot, nil
}

func (s *memTransactionStore) ListByWalletID(_ context.Context, walletID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*model.Transaction
	for _, txn := range s.byKey {
		if txn.WalletID == walletID {
			snapshot := *txn
			matched = append(matched, &snapshot)
		}
	}
	// 新的在前，ID 自增等价于写入先后
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *memTransactionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byKey)
}

func (s *memTransactionStore) successAmountSum(walletID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum int64
	for _, txn := range s.byKey {
		if txn.WalletID == walletID && txn.Status == model.TransactionStatusSuccess {
			sum += txn.Amount
		}
	}
	return sum
}

type memOutboxStore struct {
	mu       sync.Mutex
	messages []*model.OutboxMessage
}

func newMemOutboxStore() *memOutboxStore {
	return &memOutboxStore{}
}

func (s *memOutboxStore) Create(_ context.Context, msg *model.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *msg
	s.messages = append(s.messages, &saved)
	return nil
}

func (s *memOutboxStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
