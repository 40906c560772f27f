package models

// Item is one article of a client's order. QuantityRemaining mutates as the
// line produces; the other fields are fixed at load time.
type Item struct {
	ClientName        string
	ArticleName       string
	QuantityOrdered   float64
	NominalRate       float64 // units per hour at 100% OEE
	EfficiencyPct     int
	ArrivalGateHour   float64 // resolved from the owning client at queue build
	QuantityRemaining float64
}

// EffectiveRate derates the nominal rate by the item's OEE percentage.
func (it *Item) EffectiveRate() float64 {
	return it.NominalRate * float64(it.EfficiencyPct) / 100.0
}

// EstimatedHours is the theoretical time to run the full order at the
// effective rate.
func (it *Item) EstimatedHours() float64 {
	rate := it.EffectiveRate()
	if rate <= 0 {
		return 0
	}
	return it.QuantityOrdered / rate
}

// Client groups the ordered items of one customer on one line/shift. When
// Gated is set, none of its items may start before the day-local clock
// reaches ArrivalGateHour.
type Client struct {
	Name            string
	ArrivalGateHour float64
	Gated           bool
	Items           []Item
}

type PlanKey struct {
	LineID string
	Shift  int
}

// ProductionPlan holds the ordered client queues per line and shift.
// Insertion order of clients, and of items within a client, fixes the FIFO
// drain order.
type ProductionPlan struct {
	clients map[PlanKey][]*Client
	order   []PlanKey
}

func NewProductionPlan() *ProductionPlan {
	return &ProductionPlan{clients: make(map[PlanKey][]*Client)}
}

// Client returns the named client for a line/shift, creating it at the back
// of the queue on first sight.
func (p *ProductionPlan) Client(lineID string, shift int, name string) *Client {
	key := PlanKey{LineID: lineID, Shift: shift}
	for _, c := range p.clients[key] {
		if c.Name == name {
			return c
		}
	}
	if _, ok := p.clients[key]; !ok {
		p.order = append(p.order, key)
	}
	c := &Client{Name: name}
	p.clients[key] = append(p.clients[key], c)
	return c
}

// ClientsFor returns the ordered clients planned for a line/shift.
func (p *ProductionPlan) ClientsFor(lineID string, shift int) []*Client {
	return p.clients[PlanKey{LineID: lineID, Shift: shift}]
}

// Keys lists the line/shift pairs that have plan rows, in first-seen order.
func (p *ProductionPlan) Keys() []PlanKey {
	return p.order
}
