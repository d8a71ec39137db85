// Package relay delivers print jobs to network printers over raw TCP.
//
// One call to Relay.Send performs one bounded attempt: validate, dial,
// write the full payload, half-close, then wait for the printer to hang
// up. The attempt settles exactly once through a one-shot latch even when
// several completion events race (dial error, write error, remote close,
// timeout), and it owns exactly one connection which is torn down before
// Send returns. There is no retry, queueing or connection reuse.
//
// # Validation
//
// NewRequest and NewRequestBytes reject bad input before any socket is
// opened. The address check is a permissive four-dot-group pattern, not a
// strict IPv4 range check; see validate.go for why that must stay.
//
// # Transport injection
//
// The Dialer interface isolates the TCP layer. Production code uses
// NetDialer; tests use MemoryDialer, which scripts dial failures, hung
// dials and in-memory printer connections:
//
//	dialer := relay.NewMemoryDialer()
//	r := relay.New(&relay.Options{Dialer: dialer})
//
//	go func() {
//		printer := <-dialer.Remote()
//		_, _ = io.Copy(io.Discard, printer) // drain the job
//		_ = printer.Close()                 // printer hangs up
//	}()
//
//	req, _ := relay.NewRequestBytes("192.168.1.100", 9100, job)
//	out := r.Send(context.Background(), req)
package relay
