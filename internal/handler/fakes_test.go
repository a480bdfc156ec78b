package handler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/biztime/internal/model"
	"github.com/iliyamo/biztime/internal/queue"
	"github.com/iliyamo/biztime/internal/repository"
)

var errForeignKey = errors.New("Error 1452: Cannot add or update a child row: a foreign key constraint fails")

// memStore is an in-memory stand-in for the three repositories.
type memStore struct {
	mu         sync.Mutex
	companies  map[string]model.Company
	invoices   map[int64]model.Invoice
	industries []model.Industry
	links      [][2]string // {comp_code, ind_code}
	nextID     int64
	today      time.Time
}

func newMemStore() *memStore {
	return &memStore{
		companies: map[string]model.Company{},
		invoices:  map[int64]model.Invoice{},
		nextID:    1,
		today:     time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
	}
}

type memCompanies struct{ *memStore }
type memInvoices struct{ *memStore }
type memIndustries struct{ *memStore }

func (s memCompanies) List(context.Context) ([]model.CompanySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.CompanySummary{}
	for _, c := range s.companies {
		out = append(out, model.CompanySummary{Code: c.Code, Name: c.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s memCompanies) GetByCode(_ context.Context, code string) (*model.CompanyDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[code]
	if !ok {
		return nil, repository.ErrCompanyNotFound
	}
	d := &model.CompanyDetail{Company: c, Invoices: []int64{}, Industries: []string{}}
	for id, inv := range s.invoices {
		if inv.CompCode == code {
			d.Invoices = append(d.Invoices, id)
		}
	}
	sort.Slice(d.Invoices, func(i, j int) bool { return d.Invoices[i] < d.Invoices[j] })
	for _, l := range s.links {
		if l[0] != code {
			continue
		}
		for _, ind := range s.industries {
			if ind.Code == l[1] {
				d.Industries = append(d.Industries, ind.Industry)
			}
		}
	}
	return d, nil
}

func (s memCompanies) Create(_ context.Context, c *model.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[c.Code]; ok {
		return errors.New("Error 1062: Duplicate entry '" + c.Code + "' for key 'PRIMARY'")
	}
	s.companies[c.Code] = *c
	return nil
}

func (s memCompanies) Update(_ context.Context, c *model.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[c.Code]; !ok {
		return repository.ErrCompanyNotFound
	}
	s.companies[c.Code] = *c
	return nil
}

func (s memCompanies) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[code]; !ok {
		return repository.ErrCompanyNotFound
	}
	delete(s.companies, code)
	for id, inv := range s.invoices {
		if inv.CompCode == code {
			delete(s.invoices, id)
		}
	}
	return nil
}

func (s memInvoices) List(context.Context) ([]model.InvoiceSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.InvoiceSummary{}
	for _, inv := range s.invoices {
		out = append(out, model.InvoiceSummary{ID: inv.ID, CompCode: inv.CompCode})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memInvoices) GetByID(_ context.Context, id int64) (*model.InvoiceDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, repository.ErrInvoiceNotFound
	}
	return &model.InvoiceDetail{
		ID: inv.ID, Amt: inv.Amt, Paid: inv.Paid, AddDate: inv.AddDate, PaidDate: inv.PaidDate,
		Company: s.companies[inv.CompCode],
	}, nil
}

func (s memInvoices) Create(_ context.Context, compCode string, amt float64) (*model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[compCode]; !ok {
		return nil, errForeignKey
	}
	inv := model.Invoice{ID: s.nextID, CompCode: compCode, Amt: amt, AddDate: model.NewDate(s.today)}
	s.nextID++
	s.invoices[inv.ID] = inv
	return &inv, nil
}

func (s memInvoices) UpdatePayment(_ context.Context, id int64, amt float64, paid bool) (*model.Invoice, model.PaymentChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, model.PaymentUnchanged, repository.ErrInvoiceNotFound
	}
	change := model.ResolvePayment(inv.Paid, paid)
	inv.Amt = amt
	switch change {
	case model.PaymentSettled:
		d := model.NewDate(s.today)
		inv.Paid, inv.PaidDate = true, &d
	case model.PaymentReopened:
		inv.Paid, inv.PaidDate = false, nil
	}
	s.invoices[id] = inv
	return &inv, change, nil
}

func (s memInvoices) Delete(_ context.Context, id int64) (*model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, repository.ErrInvoiceNotFound
	}
	delete(s.invoices, id)
	return &inv, nil
}

func (s memIndustries) ListWithCompanies(context.Context) ([]model.IndustryCompanies, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []model.Membership
	for _, ind := range s.industries {
		matched := false
		for _, l := range s.links {
			if l[1] == ind.Code {
				name := s.companies[l[0]].Name
				rows = append(rows, model.Membership{Industry: ind.Industry, Company: &name})
				matched = true
			}
		}
		if !matched {
			rows = append(rows, model.Membership{Industry: ind.Industry})
		}
	}
	return model.GroupIndustries(rows), nil
}

func (s memIndustries) Create(_ context.Context, ind *model.Industry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.industries = append(s.industries, *ind)
	return nil
}

func (s memIndustries) Associate(_ context.Context, indCode, compCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l[0] == compCode && l[1] == indCode {
			return repository.ErrAlreadyAssociated
		}
	}
	s.links = append(s.links, [2]string{compCode, indCode})
	return nil
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []queue.Event
}

func (r *recorder) Publish(_ context.Context, ev queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}
