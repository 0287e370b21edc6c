package sim

// Event is one step of the counter, as the model saw it.
type Event struct {
	Cycle   uint64 //rtc cycle of the (last) increment
	Counter uint32
	Status  uint32 //ISTA after the step
}

func (p *Peripheral) record(e Event) {
	if p.traceLimit <= 0 {
		return
	}
	if len(p.trace) >= p.traceLimit {
		copy(p.trace, p.trace[1:])
		p.trace = p.trace[:len(p.trace)-1]
	}
	p.trace = append(p.trace, e)
}

// Trace returns a copy of the recorded events, oldest first.
func (p *Peripheral) Trace() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]Event, len(p.trace))
	copy(result, p.trace)
	return result
}
