package iso7816

// Transaction is one physical exchange.
type Transaction struct {
	Command  *CommandAPDU
	Response *ResponseAPDU
}

// IsSuccess reports whether the response carries a success status.
func (t *Transaction) IsSuccess() bool {
	return t.Response != nil && t.Response.Status.IsSuccess()
}

// Trace holds every exchange made for one logical request, in order. The
// request succeeded when its last exchange did.
type Trace []Transaction

// Last returns the final exchange, or nil for an empty trace.
func (t Trace) Last() *Transaction {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// Request returns the command that started the exchange, before any
// GET RESPONSE or Le correction.
func (t Trace) Request() *CommandAPDU {
	if len(t) == 0 {
		return nil
	}
	return t[0].Command
}

func (t Trace) IsSuccess() bool {
	last := t.Last()
	return last != nil && last.IsSuccess()
}

// Status returns the status word of the last exchange, 0 when there is none.
func (t Trace) Status() StatusWord {
	last := t.Last()
	if last == nil || last.Response == nil {
		return 0
	}
	return last.Response.Status
}

// Data returns the response data of the request. Data returned through
// GET RESPONSE is concatenated across the chain.
func (t Trace) Data() []byte {
	var out []byte
	for i, tx := range t {
		if tx.Response == nil {
			continue
		}
		if i > 0 && tx.Command.Instruction.Raw != INS_GET_RESPONSE {
			// '6C XX' retry: the new answer replaces the previous one
			out = out[:0]
		}
		out = append(out, tx.Response.Data...)
	}
	return out
}
