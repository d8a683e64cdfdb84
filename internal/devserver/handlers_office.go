package devserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/eventdesk/internal/auth"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
)

// Messages

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	search, limit, offset, err := listParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	writeData(w, http.StatusOK, s.store.ListMessages(search, unreadOnly, limit, offset))
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]int{"count": s.store.UnreadCount()})
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetMessage(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, m)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.MarkMessageRead(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, m)
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	var in entities.MessageReply
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	m, err := s.store.ReplyToMessage(mux.Vars(r)["id"], in.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("message replied", slog.String("message_id", m.ID), slog.String("to", m.Email))
	writeData(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeleteMessage(id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, deleted{ID: id, Deleted: true})
}

// Payments and expenses

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, s.store.ListPayments(r.URL.Query().Get("booking_id")))
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var in entities.PaymentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.store.CreatePayment(in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeletePayment(id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, deleted{ID: id, Deleted: true})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, s.store.ListExpenses(from, to))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in entities.ExpenseInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	e, err := s.store.CreateExpense(in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeleteExpense(id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, deleted{ID: id, Deleted: true})
}

func (s *Server) handleFinancialSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, s.store.FinancialSummary(from, to))
}

// Reports

func (s *Server) handleRevenueReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, s.store.RevenueReport(from, to))
}

func (s *Server) handleBookingReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, s.store.BookingReport(from, to))
}

// Settings

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, s.store.GetSettings())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in entities.Settings
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	out, err := s.store.UpdateSettings(in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

// Users

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, s.store.ListUsers())
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in entities.UserInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	u, err := s.store.CreateUser(in)
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("user created", slog.String("user_id", u.ID), slog.String("role", string(u.Role)))
	writeData(w, http.StatusCreated, u)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.GetUser(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, u)
}

// handleUpdateUser lets admins edit anyone and staff edit themselves.
// Only admins may change roles or activation.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := auth.CanModifyUser(r.Context(), id); err != nil {
		writeError(w, forbidden(err))
		return
	}

	var in entities.UserInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.Role != "" || in.IsActive != nil {
		if err := auth.RequireAdmin(r.Context()); err != nil {
			writeError(w, forbidden(err))
			return
		}
	}

	u, err := s.store.UpdateUser(id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if caller, err := auth.GetUserFromContext(r.Context()); err == nil && caller.UserID == id {
		writeError(w, validationError("you cannot delete your own account"))
		return
	}
	if err := s.store.DeleteUser(id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, deleted{ID: id, Deleted: true})
}

func forbidden(err error) *apiError {
	if errors.Is(err, auth.ErrUnauthorized) {
		return &apiError{status: http.StatusUnauthorized, code: "UNAUTHORIZED", message: "Authentication required"}
	}
	return &apiError{status: http.StatusForbidden, code: "FORBIDDEN", message: "Not allowed"}
}
