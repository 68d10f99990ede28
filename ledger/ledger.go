package ledger

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/cordialsys/nftstake/errors"
	"github.com/cordialsys/nftstake/program"
	"github.com/gagliardetto/solana-go"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Ledger executes transactions against accounts held in a Store. Every
// account a transaction names is locked for the whole transaction, and the
// transaction's writes are committed together or not at all.
type Ledger struct {
	store Store
	clock program.Clock
	locks *lockTable

	mu       sync.RWMutex
	programs map[solana.PublicKey]program.Program
}

func New(store Store, clock program.Clock) *Ledger {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Ledger{
		store:    store,
		clock:    clock,
		locks:    newLockTable(),
		programs: map[solana.PublicKey]program.Program{},
	}
}

func (l *Ledger) Clock() program.Clock {
	return l.clock
}

func (l *Ledger) Store() Store {
	return l.store
}

// Register makes a program invocable by its id.
func (l *Ledger) Register(p program.Program) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.programs[p.ProgramID()] = p
}

func (l *Ledger) program(id solana.PublicKey) (program.Program, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.programs[id]
	return p, ok
}

// Account returns the committed state of key, or ErrNotFound.
func (l *Ledger) Account(key solana.PublicKey) (*program.Account, error) {
	raw, err := l.store.Get(accountKey(key))
	if err != nil {
		return nil, err
	}
	account, err := decodeAccount(raw)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "decode account %s", key)
	}
	return account, nil
}

// SetAccount writes an account directly, outside of any transaction. It is
// used to seed genesis state.
func (l *Ledger) SetAccount(key solana.PublicKey, account *program.Account) error {
	release := l.locks.acquire([]solana.PublicKey{key})
	defer release()
	raw, err := encodeAccount(account)
	if err != nil {
		return err
	}
	return l.store.Put(accountKey(key), raw)
}

// Accounts visits every committed account owned by owner.
func (l *Ledger) Accounts(owner solana.PublicKey, fn func(key solana.PublicKey, account *program.Account) bool) error {
	var decodeErr error
	err := l.store.Iterate([]byte{accountPrefix}, func(key, value []byte) bool {
		account, err := decodeAccount(value)
		if err != nil {
			decodeErr = pkgerrors.Wrap(err, "decode account")
			return false
		}
		if !account.Owner.Equals(owner) {
			return true
		}
		return fn(solana.PublicKeyFromBytes(key[1:]), account)
	})
	if err != nil {
		return err
	}
	return decodeErr
}

// Processed reports whether a transaction with this signature was committed.
func (l *Ledger) Processed(sig solana.Signature) (bool, error) {
	return l.store.Has(signatureKey(sig))
}

// Submit verifies and executes tx. On any failure none of its effects are
// kept.
func (l *Ledger) Submit(ctx context.Context, tx *solana.Transaction) (sig solana.Signature, err error) {
	start := time.Now()
	defer func() {
		traceSubmit(start, err)
	}()

	if len(tx.Signatures) == 0 {
		return sig, errors.Errorf(errors.InvalidSignature, "transaction is not signed")
	}
	if err := tx.VerifySignatures(); err != nil {
		return sig, errors.Errorf(errors.InvalidSignature, "%v", err)
	}
	sig = tx.Signatures[0]
	log := logrus.WithField("signature", sig.String())

	release := l.locks.acquire(tx.Message.AccountKeys)
	defer release()

	processed, err := l.Processed(sig)
	if err != nil {
		return sig, pkgerrors.Wrap(err, "check signature")
	}
	if processed {
		return sig, errors.Errorf(errors.TransactionExists, "transaction %s was already processed", sig)
	}

	txc, err := newTxContext(ctx, l, tx)
	if err != nil {
		return sig, err
	}
	for i, ci := range tx.Message.Instructions {
		programID, err := tx.ResolveProgramIDIndex(ci.ProgramIDIndex)
		if err != nil {
			return sig, errors.Errorf(errors.NotEnoughAccountKeys, "instruction %d: %v", i, err)
		}
		metas, err := ci.ResolveInstructionAccounts(&tx.Message)
		if err != nil {
			return sig, errors.Errorf(errors.NotEnoughAccountKeys, "instruction %d: %v", i, err)
		}
		if err := txc.execute(nil, programID, metas, ci.Data, nil); err != nil {
			log.WithError(err).WithField("instruction", i).Debug("transaction failed")
			return sig, pkgerrors.Wrapf(err, "instruction %d", i)
		}
	}
	if err := txc.commit(sig); err != nil {
		return sig, err
	}
	log.Debug("transaction committed")
	return sig, nil
}

// txContext is the working set of one transaction.
type txContext struct {
	ctx      context.Context
	ledger   *Ledger
	accounts map[solana.PublicKey]*program.Account
	original map[solana.PublicKey][]byte
	signers  map[solana.PublicKey]bool
	writable map[solana.PublicKey]bool
	created  map[solana.PublicKey]bool
}

func newTxContext(ctx context.Context, l *Ledger, tx *solana.Transaction) (*txContext, error) {
	txc := &txContext{
		ctx:      ctx,
		ledger:   l,
		accounts: map[solana.PublicKey]*program.Account{},
		original: map[solana.PublicKey][]byte{},
		signers:  map[solana.PublicKey]bool{},
		writable: map[solana.PublicKey]bool{},
		created:  map[solana.PublicKey]bool{},
	}
	for _, key := range tx.Message.AccountKeys {
		txc.signers[key] = tx.IsSigner(key)
		writable, err := tx.IsWritable(key)
		if err != nil {
			return nil, err
		}
		txc.writable[key] = writable
		if _, err := txc.account(key); err != nil {
			return nil, err
		}
	}
	return txc, nil
}

// account returns the working copy of key. Only keys named by the
// transaction may be loaded.
func (txc *txContext) account(key solana.PublicKey) (*program.Account, error) {
	if account, ok := txc.accounts[key]; ok {
		return account, nil
	}
	raw, err := txc.ledger.store.Get(accountKey(key))
	var account *program.Account
	switch {
	case IsNotFound(err):
		account = &program.Account{Owner: solana.SystemProgramID}
	case err != nil:
		return nil, pkgerrors.Wrapf(err, "load account %s", key)
	default:
		if account, err = decodeAccount(raw); err != nil {
			return nil, pkgerrors.Wrapf(err, "decode account %s", key)
		}
		txc.original[key] = append([]byte(nil), raw...)
	}
	txc.accounts[key] = account
	return account, nil
}

func (txc *txContext) commit(sig solana.Signature) error {
	batch := txc.ledger.store.NewBatch()
	for key, account := range txc.accounts {
		_, existed := txc.original[key]
		if !existed && !account.Exists() {
			continue
		}
		raw, err := encodeAccount(account)
		if err != nil {
			return pkgerrors.Wrapf(err, "encode account %s", key)
		}
		if bytes.Equal(raw, txc.original[key]) {
			continue
		}
		if err := batch.Put(accountKey(key), raw); err != nil {
			return err
		}
	}
	if err := batch.Put(signatureKey(sig), []byte{1}); err != nil {
		return err
	}
	return pkgerrors.Wrap(batch.Write(), "commit transaction")
}
