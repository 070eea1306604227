package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xy-planning-network/budget/http/middleware"
	"github.com/xy-planning-network/budget/http/resp"
	"github.com/xy-planning-network/budget/http/router"
	"github.com/xy-planning-network/budget/http/session"
	"github.com/xy-planning-network/budget/ledger"
)

const recentCount = 5

type dashboardData struct {
	Summary   ledger.Summary
	ThisMonth ledger.MonthTotal
	Recent    []ledger.Transaction
	Goals     []ledger.Goal
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	book, u, err := h.book(r)
	if err != nil {
		h.Err(w, r, err)
		return
	}

	txs, err := book.List(r.Context())
	if err != nil {
		h.Err(w, r, err, resp.User(u))
		return
	}

	goals, err := book.Goals(r.Context())
	if err != nil {
		h.Err(w, r, err, resp.User(u))
		return
	}

	month := h.now().Format("2006-01")
	data := dashboardData{
		Summary:   ledger.Summarize(txs),
		ThisMonth: ledger.MonthTotal{Month: month},
		Recent:    txs,
		Goals:     goals,
	}

	if len(data.Recent) > recentCount {
		data.Recent = data.Recent[:recentCount]
	}

	for _, m := range data.Summary.Months {
		if m.Month == month {
			data.ThisMonth = m
		}
	}

	h.render(w, r, u, dashboardTmpl, data)
}

type addData struct {
	Field string
	Key   string
	Kinds []ledger.Kind
	Today string
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	u, err := h.CurrentUser(r.Context())
	if err != nil {
		h.Err(w, r, err)
		return
	}

	h.render(w, r, u, addTmpl, addData{
		Field: middleware.IdempotencyField,
		Key:   uuid.NewString(),
		Kinds: []ledger.Kind{ledger.Expense, ledger.Income},
		Today: h.now().Format(dateLayout),
	})
}

func parseTransaction(r *http.Request) (ledger.Transaction, error) {
	if err := r.ParseForm(); err != nil {
		return ledger.Transaction{}, fmt.Errorf("%w: %s", ledger.ErrNotValid, err)
	}

	amt, err := ledger.ParseAmount(r.PostForm.Get("amount"))
	if err != nil {
		return ledger.Transaction{}, err
	}

	date, err := time.Parse(dateLayout, r.PostForm.Get("date"))
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("%w: date: %s", ledger.ErrNotValid, err)
	}

	t := ledger.Transaction{
		Kind:     ledger.Kind(r.PostForm.Get("kind")),
		Category: strings.ToLower(strings.TrimSpace(r.PostForm.Get("category"))),
		Amount:   amt,
		Note:     strings.TrimSpace(r.PostForm.Get("note")),
		Date:     date,
	}

	return t, t.Valid()
}

func (h *Handler) addSubmit(w http.ResponseWriter, r *http.Request) {
	t, err := parseTransaction(r)
	if err != nil {
		h.flashTo(w, r, router.AddPath, session.Flash{Class: session.FlashError, Msg: session.BadInputMsg})
		return
	}

	book, _, err := h.book(r)
	if err != nil {
		h.fail(w, r, router.AddPath, err)
		return
	}

	if _, err := book.Add(r.Context(), t); err != nil {
		h.fail(w, r, router.AddPath, err)
		return
	}

	if err := h.Redirect(w, r, resp.Url(router.TransactionsPath), resp.Success("Transaction added.")); err != nil {
		h.Err(w, r, err)
	}
}

type transactionsData struct {
	Summary      ledger.Summary
	Transactions []ledger.Transaction
}

func (h *Handler) transactions(w http.ResponseWriter, r *http.Request) {
	book, u, err := h.book(r)
	if err != nil {
		h.Err(w, r, err)
		return
	}

	txs, err := book.List(r.Context())
	if err != nil {
		h.Err(w, r, err, resp.User(u))
		return
	}

	h.render(w, r, u, transactionsTmpl, transactionsData{Summary: ledger.Summarize(txs), Transactions: txs})
}

func (h *Handler) analytics(w http.ResponseWriter, r *http.Request) {
	book, u, err := h.book(r)
	if err != nil {
		h.Err(w, r, err)
		return
	}

	txs, err := book.List(r.Context())
	if err != nil {
		h.Err(w, r, err, resp.User(u))
		return
	}

	h.render(w, r, u, analyticsTmpl, ledger.Summarize(txs))
}

type goalsData struct {
	Goals []ledger.Goal
}

func (h *Handler) goals(w http.ResponseWriter, r *http.Request) {
	book, u, err := h.book(r)
	if err != nil {
		h.Err(w, r, err)
		return
	}

	goals, err := book.Goals(r.Context())
	if err != nil {
		h.Err(w, r, err, resp.User(u))
		return
	}

	h.render(w, r, u, goalsTmpl, goalsData{Goals: goals})
}

func parseGoal(r *http.Request) (ledger.Goal, error) {
	if err := r.ParseForm(); err != nil {
		return ledger.Goal{}, fmt.Errorf("%w: %s", ledger.ErrNotValid, err)
	}

	target, err := ledger.ParseAmount(r.PostForm.Get("target"))
	if err != nil {
		return ledger.Goal{}, err
	}

	g := ledger.Goal{Name: strings.TrimSpace(r.PostForm.Get("name")), Target: target}
	if saved := r.PostForm.Get("saved"); saved != "" {
		if g.Saved, err = ledger.ParseAmount(saved); err != nil {
			return ledger.Goal{}, err
		}
	}

	if deadline := r.PostForm.Get("deadline"); deadline != "" {
		if g.Deadline, err = time.Parse(dateLayout, deadline); err != nil {
			return ledger.Goal{}, fmt.Errorf("%w: deadline: %s", ledger.ErrNotValid, err)
		}
	}

	return g, g.Valid()
}

func (h *Handler) goalsSubmit(w http.ResponseWriter, r *http.Request) {
	g, err := parseGoal(r)
	if err != nil {
		h.flashTo(w, r, router.GoalsPath, session.Flash{Class: session.FlashError, Msg: session.BadInputMsg})
		return
	}

	book, _, err := h.book(r)
	if err != nil {
		h.fail(w, r, router.GoalsPath, err)
		return
	}

	if _, err := book.AddGoal(r.Context(), g); err != nil {
		h.fail(w, r, router.GoalsPath, err)
		return
	}

	if err := h.Redirect(w, r, resp.Url(router.GoalsPath), resp.Success("Goal saved.")); err != nil {
		h.Err(w, r, err)
	}
}

type monthlyData struct {
	Month        string
	Prev         string
	Next         string
	Summary      ledger.Summary
	Transactions []ledger.Transaction
}

// monthly breaks down one month, picked by the "month" query parameter
// and defaulting to the current one.
func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	month, err := time.Parse("2006-01", r.URL.Query().Get("month"))
	if err != nil {
		now := h.now()
		month = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	book, u, err := h.book(r)
	if err != nil {
		h.Err(w, r, err)
		return
	}

	txs, err := book.List(r.Context())
	if err != nil {
		h.Err(w, r, err, resp.User(u))
		return
	}

	txs = ledger.InMonth(txs, month.Format("2006-01"))
	h.render(w, r, u, monthlyTmpl, monthlyData{
		Month:        month.Format("2006-01"),
		Prev:         month.AddDate(0, -1, 0).Format("2006-01"),
		Next:         month.AddDate(0, 1, 0).Format("2006-01"),
		Summary:      ledger.Summarize(txs),
		Transactions: txs,
	})
}
