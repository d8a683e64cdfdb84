package devserver

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/eventdesk/internal/domain/entities"
	"github.com/devilmonastery/eventdesk/internal/pkg/timeutil"
)

type deleted struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// listParams reads search, limit and offset
func listParams(r *http.Request) (search string, limit, offset int, err error) {
	if limit, err = intQuery(r, "limit"); err != nil {
		return
	}
	if offset, err = intQuery(r, "offset"); err != nil {
		return
	}
	search = r.URL.Query().Get("search")
	return
}

// dateRange reads and validates the from and to query parameters
func dateRange(r *http.Request) (from, to string, err error) {
	q := r.URL.Query()
	from, to = q.Get("from"), q.Get("to")
	for name, v := range map[string]string{"from": from, "to": to} {
		if v == "" {
			continue
		}
		if _, perr := timeutil.ParseDate(v, time.UTC); perr != nil {
			return "", "", validationError("%s must be YYYY-MM-DD", name)
		}
	}
	if from != "" && to != "" && from > to {
		return "", "", validationError("from must not be after to")
	}
	return from, to, nil
}

func (s *Server) bookingQuery(r *http.Request) (BookingQuery, error) {
	search, limit, offset, err := listParams(r)
	if err != nil {
		return BookingQuery{}, err
	}
	from, to, err := dateRange(r)
	if err != nil {
		return BookingQuery{}, err
	}
	status := entities.BookingStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		return BookingQuery{}, validationError("unknown booking status %q", status)
	}
	return BookingQuery{
		Search: search,
		Status: status,
		From:   from,
		To:     to,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	q, err := s.bookingQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q.ClientID = r.URL.Query().Get("client_id")
	writeData(w, http.StatusOK, s.store.ListBookings(q))
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var in entities.BookingInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	b, err := s.store.CreateBooking(in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, b)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.GetBooking(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, b)
}

func (s *Server) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	var in entities.BookingInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	b, err := s.store.UpdateBooking(mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, b)
}

func (s *Server) handleBookingStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status entities.BookingStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	b, err := s.store.SetBookingStatus(mux.Vars(r)["id"], req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeleteBooking(id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, deleted{ID: id, Deleted: true})
}

// Archive

func (s *Server) handleListArchive(w http.ResponseWriter, r *http.Request) {
	q, err := s.bookingQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q.Archived = true
	writeData(w, http.StatusOK, s.store.ListBookings(q))
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.SetArchived(mux.Vars(r)["id"], true)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, b)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.SetArchived(mux.Vars(r)["id"], false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, b)
}

// Clients

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	search, limit, offset, err := listParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, s.store.ListClients(search, limit, offset))
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var in entities.ClientInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	c, err := s.store.CreateClient(in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, c)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetClient(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var in entities.ClientInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	c, err := s.store.UpdateClient(mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeleteClient(id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, deleted{ID: id, Deleted: true})
}

func (s *Server) handleClientBookings(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.store.GetClient(id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, s.store.ListBookings(BookingQuery{ClientID: id}))
}

// Calendar

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	events := s.store.CalendarEvents(from, to)
	if events == nil {
		events = []entities.CalendarEvent{}
	}
	writeData(w, http.StatusOK, events)
}

func (s *Server) handleBlockDate(w http.ResponseWriter, r *http.Request) {
	var in entities.BlockedDate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	bd, err := s.store.BlockDate(in.Date, in.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, bd)
}

func (s *Server) handleUnblockDate(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if err := s.store.UnblockDate(date); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, deleted{ID: date, Deleted: true})
}
