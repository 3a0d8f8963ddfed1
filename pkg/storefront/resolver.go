package storefront

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/models"
)

const (
	DefaultDebounce = 500 * time.Millisecond

	postalCodeLength = 4
)

// OptionsFetcher is satisfied by *Client.
type OptionsFetcher interface {
	ShippingOptions(ctx context.Context, req models.ShippingOptionsRequest) ([]models.ShippingOption, error)
}

// ResolverState is what the checkout renders. Options is nil until the first
// successful fetch.
type ResolverState struct {
	PostalCode  string
	CountryCode string
	Options     []models.ShippingOption
	SelectedID  string
	Loading     bool
	NoOptions   bool
	Error       string
}

func (s ResolverState) Selected() (models.ShippingOption, bool) {
	for _, option := range s.Options {
		if option.ID == s.SelectedID {
			return option, true
		}
	}

	return models.ShippingOption{}, false
}

type ResolverOptions struct {
	Debounce time.Duration
	Locale   string
	// OnChange runs on the resolver goroutine after every state change.
	OnChange func(ResolverState)
}

type address struct {
	postalCode  string
	countryCode string
}

type (
	addressChanged struct{ addr address }
	optionSelected struct{ id string }
	debounceFired  struct{ seq uint64 }
	fetchDone      struct {
		seq     uint64
		addr    address
		options []models.ShippingOption
		err     error
	}
	stateQuery struct{ reply chan ResolverState }
)

// ShippingResolver owns the shipping step of checkout. Address input, option
// selection, debounce timers and fetch results are all events on one loop,
// so none of them can interleave with another.
type ShippingResolver struct {
	fetcher OptionsFetcher
	opts    ResolverOptions

	events    chan any
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewShippingResolver(ctx context.Context, fetcher OptionsFetcher, opts ResolverOptions) *ShippingResolver {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Locale == "" {
		opts.Locale = "nb"
	}

	r := &ShippingResolver{
		fetcher: fetcher,
		opts:    opts,
		events:  make(chan any),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go r.run(ctx)

	return r
}

// SetAddress reports the address as typed so far.
func (r *ShippingResolver) SetAddress(postalCode, countryCode string) {
	r.send(addressChanged{addr: address{
		postalCode:  strings.TrimSpace(postalCode),
		countryCode: strings.ToUpper(strings.TrimSpace(countryCode)),
	}})
}

// Select picks an option by id. Ids not in the current list are ignored.
func (r *ShippingResolver) Select(optionID string) {
	r.send(optionSelected{id: optionID})
}

func (r *ShippingResolver) State() ResolverState {
	reply := make(chan ResolverState, 1)
	if !r.send(stateQuery{reply: reply}) {
		return ResolverState{}
	}

	return <-reply
}

func (r *ShippingResolver) Close() {
	r.closeOnce.Do(func() { close(r.quit) })
	<-r.done
}

func (r *ShippingResolver) send(event any) bool {
	select {
	case r.events <- event:
		return true
	case <-r.done:
		return false
	}
}

func (r *ShippingResolver) run(ctx context.Context) {
	defer close(r.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		state   ResolverState
		seq     uint64
		timer   *time.Timer
		fetched *address
	)

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
		}
	}
	defer stopTimer()

	notify := func() {
		if r.opts.OnChange != nil {
			r.opts.OnChange(cloneState(state))
		}
	}

	for {
		var event any

		select {
		case <-ctx.Done():
			return
		case <-r.quit:
			return
		case event = <-r.events:
		}

		switch e := event.(type) {
		case addressChanged:
			// re-sending the address being resolved leaves the pending work alone
			current := address{postalCode: state.PostalCode, countryCode: state.CountryCode}
			if e.addr == current && (timer != nil || state.Loading) {
				continue
			}

			state.PostalCode = e.addr.postalCode
			state.CountryCode = e.addr.countryCode

			// a new keystroke invalidates any pending timer or in-flight fetch
			seq++
			stopTimer()

			if !completePostalCode(e.addr.postalCode) || e.addr.countryCode == "" {
				if state.Loading {
					state.Loading = false
					notify()
				}
				continue
			}

			if fetched != nil && *fetched == e.addr && state.Error == "" {
				if state.Loading {
					state.Loading = false
					notify()
				}
				continue
			}

			pending := seq
			timer = time.AfterFunc(r.opts.Debounce, func() {
				r.deliver(debounceFired{seq: pending})
			})

		case debounceFired:
			if e.seq != seq {
				continue
			}
			timer = nil

			addr := address{postalCode: state.PostalCode, countryCode: state.CountryCode}
			state.Loading = true
			notify()

			go r.fetch(ctx, e.seq, addr)

		case fetchDone:
			if e.seq != seq {
				continue
			}
			state.Loading = false

			if e.err != nil {
				slog.Warn("Shipping options fetch failed",
					slog.String("postalCode", e.addr.postalCode), slog.Any("error", e.err))

				state.Options = nil
				state.SelectedID = ""
				state.NoOptions = false
				state.Error = FetchErrorMessage(r.opts.Locale)
				fetched = nil
				notify()
				continue
			}

			addr := e.addr
			fetched = &addr
			state.Error = ""
			state.Options = e.options
			state.NoOptions = len(e.options) == 0
			state.SelectedID = keepOrDefault(state.SelectedID, e.options)
			notify()

		case optionSelected:
			if !containsOption(state.Options, e.id) || state.SelectedID == e.id {
				continue
			}
			state.SelectedID = e.id
			notify()

		case stateQuery:
			e.reply <- cloneState(state)
		}
	}
}

func (r *ShippingResolver) fetch(ctx context.Context, seq uint64, addr address) {
	options, err := r.fetcher.ShippingOptions(ctx, models.ShippingOptionsRequest{
		PostalCode:  addr.postalCode,
		CountryCode: addr.countryCode,
		Locale:      r.opts.Locale,
	})

	r.deliver(fetchDone{seq: seq, addr: addr, options: options, err: err})
}

// deliver is used by timers and fetches; it gives up once the loop has exited.
func (r *ShippingResolver) deliver(event any) {
	select {
	case r.events <- event:
	case <-r.done:
	}
}

// keepOrDefault keeps the customer's pick when the new list still offers it
// and otherwise falls back to the cheapest option.
func keepOrDefault(selected string, options []models.ShippingOption) string {
	if selected != "" && containsOption(options, selected) {
		return selected
	}

	if len(options) > 0 {
		return options[0].ID
	}

	return ""
}

func containsOption(options []models.ShippingOption, id string) bool {
	return slices.ContainsFunc(options, func(o models.ShippingOption) bool { return o.ID == id })
}

func completePostalCode(code string) bool {
	if len(code) != postalCodeLength {
		return false
	}

	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

func cloneState(s ResolverState) ResolverState {
	if s.Options != nil {
		s.Options = slices.Clone(s.Options)
	}

	return s
}

func FetchErrorMessage(locale string) string {
	if locale == "en" {
		return "Could not load shipping options. Please try again."
	}

	return "Kunne ikke hente fraktalternativer. Prøv igjen."
}

func NoOptionsMessage(locale string) string {
	if locale == "en" {
		return "No shipping options are available for this postal code."
	}

	return "Ingen fraktalternativer er tilgjengelige for dette postnummeret."
}
