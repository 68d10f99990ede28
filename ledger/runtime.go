package ledger

import (
	"bytes"
	"context"

	"github.com/cordialsys/nftstake/errors"
	"github.com/cordialsys/nftstake/program"
	"github.com/gagliardetto/solana-go"
)

// MaxInvokeDepth bounds nested cross-program invocation.
const MaxInvokeDepth = 4

type snapshot struct {
	owner solana.PublicKey
	data  []byte
}

// frame is one program invocation inside a transaction. It is the Runtime
// handed to that program.
type frame struct {
	txc       *txContext
	programID solana.PublicKey
	depth     int
	infos     []*program.AccountInfo
	pre       map[solana.PublicKey]snapshot
}

var _ program.Runtime = &frame{}

// execute runs programID with the given accounts. Signer privilege on a
// non-signing key is granted only through seeds derived from the caller.
func (txc *txContext) execute(caller *frame, programID solana.PublicKey, metas []*solana.AccountMeta, data []byte, signerSeeds [][][]byte) error {
	depth := 0
	if caller != nil {
		depth = caller.depth + 1
	}
	if depth > MaxInvokeDepth {
		return errors.Unknownf("invoke depth %d exceeds %d", depth, MaxInvokeDepth)
	}
	callee, ok := txc.ledger.program(programID)
	if !ok {
		return errors.Unknownf("program %s is not deployed", programID)
	}

	derived := map[solana.PublicKey]bool{}
	if caller != nil {
		for _, seeds := range signerSeeds {
			address, err := solana.CreateProgramAddress(seeds, caller.programID)
			if err != nil {
				return errors.InvalidDerivedAddressf("invalid signer seeds: %v", err)
			}
			derived[address] = true
		}
	}

	infos := make([]*program.AccountInfo, 0, len(metas))
	for _, meta := range metas {
		if _, ok := txc.writable[meta.PublicKey]; !ok {
			return errors.Errorf(errors.NotEnoughAccountKeys, "account %s is not part of the transaction", meta.PublicKey)
		}
		account, err := txc.account(meta.PublicKey)
		if err != nil {
			return err
		}
		isSigner, isWritable := txc.signers[meta.PublicKey], txc.writable[meta.PublicKey]
		if caller != nil {
			// a callee never holds more privilege than its caller was given
			isSigner, isWritable = caller.privileges(meta.PublicKey)
		}
		signer := false
		if meta.IsSigner {
			if !isSigner && !derived[meta.PublicKey] {
				return errors.MissingSignaturef("%s did not sign for %s", meta.PublicKey, programID)
			}
			signer = true
		}
		infos = append(infos, &program.AccountInfo{
			Key:        meta.PublicKey,
			IsSigner:   signer,
			IsWritable: meta.IsWritable && isWritable,
			Account:    account,
		})
	}

	f := &frame{
		txc:       txc,
		programID: programID,
		depth:     depth,
		infos:     infos,
	}
	f.snapshot()
	env := &program.Env{
		ProgramID: programID,
		Accounts:  infos,
		Clock:     txc.ledger.clock,
		Runtime:   f,
	}
	if err := callee.Process(txc.ctx, env, data); err != nil {
		return err
	}
	return f.verify()
}

// privileges reports whether key reached this frame as a signer and as
// writable. Keys the frame was not given carry neither.
func (f *frame) privileges(key solana.PublicKey) (signer bool, writable bool) {
	for _, info := range f.infos {
		if info.Key.Equals(key) {
			signer = signer || info.IsSigner
			writable = writable || info.IsWritable
		}
	}
	return signer, writable
}

func (f *frame) snapshot() {
	f.pre = make(map[solana.PublicKey]snapshot, len(f.infos))
	for _, info := range f.infos {
		f.pre[info.Key] = snapshot{
			owner: info.Owner,
			data:  append([]byte(nil), info.Data...),
		}
	}
}

// verify checks that every account changed by this frame was writable and
// owned by the frame's program.
func (f *frame) verify() error {
	writable := map[solana.PublicKey]bool{}
	for _, info := range f.infos {
		writable[info.Key] = writable[info.Key] || info.IsWritable
	}
	for _, info := range f.infos {
		pre := f.pre[info.Key]
		if pre.owner.Equals(info.Owner) && bytes.Equal(pre.data, info.Data) {
			continue
		}
		if !writable[info.Key] {
			return errors.Unknownf("%s modified read-only account %s", f.programID, info.Key)
		}
		owned := pre.owner.Equals(f.programID)
		if f.txc.created[info.Key] && info.Owner.Equals(f.programID) {
			owned = true
		}
		if !owned {
			return errors.Unknownf("%s modified account %s owned by %s", f.programID, info.Key, pre.owner)
		}
		if !pre.owner.Equals(info.Owner) && !f.txc.created[info.Key] {
			return errors.Unknownf("%s reassigned account %s", f.programID, info.Key)
		}
	}
	return nil
}

func (f *frame) Invoke(ctx context.Context, ix solana.Instruction, signerSeeds ...[][]byte) error {
	if err := f.verify(); err != nil {
		return err
	}
	data, err := ix.Data()
	if err != nil {
		return errors.SerializationFailuref("could not encode instruction: %v", err)
	}
	if err := f.txc.execute(f, ix.ProgramID(), ix.Accounts(), data, signerSeeds); err != nil {
		return err
	}
	f.snapshot()
	return nil
}

func (f *frame) CreateAccount(ctx context.Context, payer *program.AccountInfo, target *program.AccountInfo, space uint64, owner solana.PublicKey, signerSeeds ...[][]byte) error {
	if !payer.IsSigner {
		return errors.MissingSignaturef("payer %s must sign", payer.Key)
	}
	if !target.IsWritable {
		return errors.Unknownf("new account %s must be writable", target.Key)
	}
	authorized := target.IsSigner
	for _, seeds := range signerSeeds {
		address, err := solana.CreateProgramAddress(seeds, f.programID)
		if err == nil && address.Equals(target.Key) {
			authorized = true
		}
	}
	if !authorized {
		return errors.MissingSignaturef("new account %s must sign", target.Key)
	}
	if target.Account.Exists() {
		return errors.Errorf(errors.AccountAlreadyInUse, "account %s already in use", target.Key)
	}
	target.Owner = owner
	target.Data = make([]byte, space)
	f.txc.created[target.Key] = true
	return nil
}
