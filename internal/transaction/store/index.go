package store

import "sync"

// orderIDIndex enforces the one-to-one constraint between order IDs and live
// transactions. Registration is an atomic insert-if-absent: a plain
// check-then-insert would let two concurrent creates with the same order ID
// both pass the check.
type orderIDIndex struct {
	m sync.Map // orderID -> transaction id, 0 while the insert is in flight
}

// register claims orderID. It returns false when another live transaction
// already holds it.
func (i *orderIDIndex) register(orderID string) bool {
	_, taken := i.m.LoadOrStore(orderID, int64(0))
	return !taken
}

// bind records the id assigned to a previously registered orderID.
func (i *orderIDIndex) bind(orderID string, id int64) {
	i.m.Store(orderID, id)
}

// lookup resolves orderID to a transaction id. A registration whose insert has
// not landed yet reads as absent.
func (i *orderIDIndex) lookup(orderID string) (int64, bool) {
	v, ok := i.m.Load(orderID)
	if !ok {
		return 0, false
	}

	id := v.(int64)
	if id == 0 {
		return 0, false
	}

	return id, true
}

// release frees orderID for reuse. Called on delete.
func (i *orderIDIndex) release(orderID string) {
	i.m.Delete(orderID)
}

func (i *orderIDIndex) reset() {
	i.m.Range(func(k, _ any) bool {
		i.m.Delete(k)
		return true
	})
}
