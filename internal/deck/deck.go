// Package deck implements the single-owner actor that holds every record:
// the deck goroutine is the only thing that ever touches the RecordMap, so
// mutation needs no lock. Everything else — the facade, the reporter
// runtime, any number of Handles — talks to the deck by sending messages
// on its mailbox and, for requests that need one, waiting on a reply
// channel.
package deck

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/relaypulse/beatkeeper/internal/model"
	"github.com/relaypulse/beatkeeper/internal/snapshot"
)

// publishInterval is the snapshot publication cadence. Readers may lag the
// deck's state by up to one tick, never diverge from it.
const publishInterval = 1 * time.Second

// ReplyTimeout bounds how long a reply-bearing request waits for the deck
// before surfacing model.KindReplyTimeout.
const ReplyTimeout = 5 * time.Second

type registerResult struct {
	id  model.RecordId
	err error
}

type msgInit struct{ reply chan *snapshot.Map }

// msgRegister's reply channel is unbuffered: a completed send proves the
// caller actually took the result. A caller that gives up closes cancel
// instead of receiving, which is what lets the deck roll the insert back
// rather than leak a record nobody holds a handle to.
type msgRegister struct {
	name   string
	freq   time.Duration
	reply  chan registerResult
	cancel chan struct{}
}
type msgSignal struct {
	id model.RecordId
	at time.Time
}
type msgDeploy struct {
	id model.RecordId
	at time.Time
}
type msgSetFreq struct {
	id   model.RecordId
	freq time.Duration
}
type msgUnregister struct{ id model.RecordId }
type msgPublishTick struct{}

// Deck is the mailbox handle for the single deck goroutine. The zero value
// is not usable; construct with Start.
type Deck struct {
	mailbox chan any
	done    chan struct{}
	log     zerolog.Logger
}

// Start spawns the deck goroutine and its snapshot-publication ticker, and
// returns a handle to its mailbox. Call Init to obtain the published
// snapshot map.
func Start(log zerolog.Logger) *Deck {
	d := &Deck{
		mailbox: make(chan any, 256),
		done:    make(chan struct{}),
		log:     log,
	}
	snap := snapshot.New()
	go d.run(snap)
	go d.tick()
	return d
}

// Init returns the deck's published snapshot map.
func (d *Deck) Init() (*snapshot.Map, error) {
	reply := make(chan *snapshot.Map, 1)
	if err := d.send(msgInit{reply: reply}); err != nil {
		return nil, err
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-time.After(ReplyTimeout):
		return nil, model.New("deck.init", model.KindReplyTimeout, "deck did not reply in time")
	}
}

// Stop ends the deck goroutine. Further sends surface
// model.KindChannelSendFailure instead of blocking or panicking. Safe to
// call more than once.
func (d *Deck) Stop() {
	select {
	case <-d.done:
	default:
		close(d.done)
	}
}

func (d *Deck) tick() {
	ticker := time.NewTicker(publishInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = d.send(msgPublishTick{})
		case <-d.done:
			return
		}
	}
}

// send delivers msg to the mailbox, or reports ChannelSendFailure if the
// deck has stopped. It never blocks forever: either the mailbox accepts
// the message or done fires.
func (d *Deck) send(msg any) error {
	// Checked on its own first: with a free mailbox slot, the select below
	// could otherwise still pick the send after Stop.
	select {
	case <-d.done:
		return model.New("deck.send", model.KindChannelSendFailure, "deck mailbox closed")
	default:
	}
	select {
	case d.mailbox <- msg:
		return nil
	case <-d.done:
		return model.New("deck.send", model.KindChannelSendFailure, "deck mailbox closed")
	}
}

// Register asks the deck to allocate an id and insert a new record. On
// timeout the reply channel is abandoned by closing cancel, so the deck
// rolls back the insert instead of keeping a record the caller never
// learned the id of.
func (d *Deck) Register(name string, freq time.Duration) (model.RecordId, error) {
	reply := make(chan registerResult)
	cancel := make(chan struct{})
	if err := d.send(msgRegister{name: name, freq: freq, reply: reply, cancel: cancel}); err != nil {
		return 0, err
	}
	select {
	case res := <-reply:
		return res.id, res.err
	case <-time.After(ReplyTimeout):
		close(cancel)
		return 0, model.New("deck.register", model.KindReplyTimeout, "deck did not reply in time")
	}
}

// Signal appends a timestamped signal to id's track. Unknown ids are
// dropped silently by the deck.
func (d *Deck) Signal(id model.RecordId, at time.Time) error {
	return d.send(msgSignal{id: id, at: at})
}

// Deploy updates id's deployment timestamp.
func (d *Deck) Deploy(id model.RecordId, at time.Time) error {
	return d.send(msgDeploy{id: id, at: at})
}

// SetExpectedFreq updates id's expected cadence.
func (d *Deck) SetExpectedFreq(id model.RecordId, freq time.Duration) error {
	return d.send(msgSetFreq{id: id, freq: freq})
}

// Unregister removes id, if present, and releases it for reuse.
func (d *Deck) Unregister(id model.RecordId) error {
	return d.send(msgUnregister{id: id})
}

func (d *Deck) run(snap *snapshot.Map) {
	ix := &indexer{}
	rm := make(map[model.RecordId]model.Record)

	for {
		select {
		case raw := <-d.mailbox:
			switch msg := raw.(type) {
			case msgInit:
				select {
				case msg.reply <- snap:
				default:
				}

			case msgRegister:
				id, err := ix.next()
				if err != nil {
					deliverRegister(msg, registerResult{err: err})
					continue
				}
				rm[id] = model.NewRecord(id, msg.name, msg.freq, time.Now())
				if !deliverRegister(msg, registerResult{id: id}) {
					// Caller gave up before taking the reply; roll the
					// insert back so the id can be reissued.
					delete(rm, id)
					ix.release(id)
				}

			case msgSignal:
				if rec, ok := rm[msg.id]; ok {
					rec.AddSignal(msg.at)
					rm[msg.id] = rec
				}

			case msgDeploy:
				if rec, ok := rm[msg.id]; ok {
					rec.SetDeployment(msg.at)
					rm[msg.id] = rec
				}

			case msgSetFreq:
				if rec, ok := rm[msg.id]; ok {
					rec.SetExpectedFreq(msg.freq)
					rm[msg.id] = rec
				}

			case msgUnregister:
				if _, ok := rm[msg.id]; ok {
					delete(rm, msg.id)
					ix.release(msg.id)
				}

			case msgPublishTick:
				snap.Replace(cloneRecordMap(rm))

			default:
				d.log.Warn().Type("msg", raw).Msg("deck: unrecognized message")
			}

		case <-d.done:
			return
		}
	}
}

// deliverRegister hands res to the registering caller, or reports false if
// the caller abandoned the request. Blocks until one of the two happens;
// every caller either receives or closes cancel, so this cannot wedge the
// deck.
func deliverRegister(msg msgRegister, res registerResult) bool {
	select {
	case msg.reply <- res:
		return true
	case <-msg.cancel:
		return false
	}
}

func cloneRecordMap(rm map[model.RecordId]model.Record) map[model.RecordId]model.Record {
	out := make(map[model.RecordId]model.Record, len(rm))
	for id, r := range rm {
		out[id] = r.Clone()
	}
	return out
}
