package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/AdamBeresnev/tournament-scoreboard/internal/bracket"
	"github.com/AdamBeresnev/tournament-scoreboard/internal/httputil"
	"github.com/AdamBeresnev/tournament-scoreboard/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

type services struct {
	tournaments *service.TournamentService
	competitors *service.CompetitorService
	matches     *service.MatchService
}

type createTournamentRequest struct {
	Name        string                    `json:"name"`
	Format      string                    `json:"format"`
	Competitors []service.CompetitorInput `json:"competitors"`
}

type registerCompetitorsRequest struct {
	// One competitor per line
	Names string `json:"names"`
}

type completeMatchRequest struct {
	WinnerID string `json:"winner_id"`
}

type pointRequest struct {
	Slot int `json:"slot"`
}

// An empty body decides by score.
type winnerRequest struct {
	ForceSlot int `json:"force_slot"`
}

type scoreRequest struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

func newRouter(s services, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			tournaments, err := s.tournaments.ListTournaments(r.Context())
			if err != nil {
				httputil.InternalServerError(w, "Failed to list tournaments", err)
				return
			}
			httputil.JSON(w, http.StatusOK, tournaments)
		})

		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var req createTournamentRequest
			if err := httputil.DecodeJSON(r, &req); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}
			format, err := bracket.ParseFormat(req.Format)
			if err != nil {
				httputil.BadRequest(w, err.Error(), err)
				return
			}

			id, err := s.tournaments.CreateTournament(r.Context(), req.Name, format, req.Competitors)
			if err != nil {
				writeError(w, "Failed to create tournament", err)
				return
			}
			httputil.JSON(w, http.StatusCreated, map[string]uuid.UUID{"id": id})
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlID(w, r, "Invalid tournament ID")
				if !ok {
					return
				}
				data, err := s.tournaments.GetTournamentData(r.Context(), id)
				if err != nil {
					writeError(w, "Failed to get tournament", err)
					return
				}
				httputil.JSON(w, http.StatusOK, data)
			})

			r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlID(w, r, "Invalid tournament ID")
				if !ok {
					return
				}
				if err := s.tournaments.DeleteTournament(r.Context(), id); err != nil {
					writeError(w, "Failed to delete tournament", err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})

			r.Get("/competitors", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlID(w, r, "Invalid tournament ID")
				if !ok {
					return
				}
				competitors, err := s.competitors.ListCompetitors(r.Context(), id)
				if err != nil {
					writeError(w, "Failed to list competitors", err)
					return
				}
				httputil.JSON(w, http.StatusOK, competitors)
			})

			r.Post("/competitors", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlID(w, r, "Invalid tournament ID")
				if !ok {
					return
				}
				var req registerCompetitorsRequest
				if err := httputil.DecodeJSON(r, &req); err != nil {
					httputil.BadRequest(w, "Invalid request body", err)
					return
				}
				competitors, err := s.competitors.RegisterCompetitors(r.Context(), id, req.Names)
				if err != nil {
					writeError(w, "Failed to register competitors", err)
					return
				}
				httputil.JSON(w, http.StatusCreated, competitors)
			})

			r.Post("/bracket", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlID(w, r, "Invalid tournament ID")
				if !ok {
					return
				}
				if err := s.tournaments.GenerateBracket(r.Context(), id); err != nil {
					writeError(w, "Failed to generate bracket", err)
					return
				}
				data, err := s.tournaments.GetTournamentData(r.Context(), id)
				if err != nil {
					writeError(w, "Failed to get tournament", err)
					return
				}
				httputil.JSON(w, http.StatusCreated, data)
			})

			r.Get("/bracket", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlID(w, r, "Invalid tournament ID")
				if !ok {
					return
				}
				view, err := s.tournaments.GetBracketView(r.Context(), id)
				if err != nil {
					writeError(w, "Failed to get bracket", err)
					return
				}
				httputil.JSON(w, http.StatusOK, view)
			})

			r.Get("/standings", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlID(w, r, "Invalid tournament ID")
				if !ok {
					return
				}
				standings, err := s.tournaments.GetStandings(r.Context(), id)
				if err != nil {
					writeError(w, "Failed to get standings", err)
					return
				}
				httputil.JSON(w, http.StatusOK, standings)
			})

			r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlID(w, r, "Invalid tournament ID")
				if !ok {
					return
				}
				stats, err := s.tournaments.GetStats(r.Context(), id)
				if err != nil {
					writeError(w, "Failed to get stats", err)
					return
				}
				httputil.JSON(w, http.StatusOK, stats)
			})

			r.Get("/next-match", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlID(w, r, "Invalid tournament ID")
				if !ok {
					return
				}
				next, err := s.matches.PickNextMatch(r.Context(), id)
				if err != nil {
					writeError(w, "Failed to pick next match", err)
					return
				}
				if next == nil {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				httputil.JSON(w, http.StatusOK, next)
			})

			r.Post("/playoffs", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlID(w, r, "Invalid tournament ID")
				if !ok {
					return
				}
				if err := s.tournaments.AdvanceToPlayoffs(r.Context(), id); err != nil {
					writeError(w, "Failed to seed playoffs", err)
					return
				}
				data, err := s.tournaments.GetTournamentData(r.Context(), id)
				if err != nil {
					writeError(w, "Failed to get tournament", err)
					return
				}
				httputil.JSON(w, http.StatusOK, data)
			})

			r.Post("/swiss-rounds", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlID(w, r, "Invalid tournament ID")
				if !ok {
					return
				}
				round, err := s.tournaments.NextSwissRound(r.Context(), id)
				if err != nil {
					writeError(w, "Failed to create Swiss round", err)
					return
				}
				httputil.JSON(w, http.StatusCreated, map[string]int{"round": round})
			})
		})
	})

	r.Route("/matches/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "Invalid match ID")
			if !ok {
				return
			}
			data, err := s.matches.GetMatch(r.Context(), id)
			if err != nil {
				writeError(w, "Failed to get match data", err)
				return
			}
			httputil.JSON(w, http.StatusOK, data)
		})

		r.Post("/complete", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "Invalid match ID")
			if !ok {
				return
			}
			var req completeMatchRequest
			if err := httputil.DecodeJSON(r, &req); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}
			winnerID, err := uuid.Parse(req.WinnerID)
			if err != nil {
				httputil.BadRequest(w, "Invalid winner ID", err)
				return
			}
			match, err := s.matches.CompleteMatch(r.Context(), id, winnerID)
			if err != nil {
				writeError(w, "Failed to complete match", err)
				return
			}
			httputil.JSON(w, http.StatusOK, match)
		})

		r.Post("/score", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "Invalid match ID")
			if !ok {
				return
			}
			var req scoreRequest
			if err := httputil.DecodeJSON(r, &req); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}
			match, err := s.matches.UpdateScore(r.Context(), id, req.Score1, req.Score2)
			if err != nil {
				writeError(w, "Failed to update score", err)
				return
			}
			httputil.JSON(w, http.StatusOK, match)
		})

		r.Post("/point", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "Invalid match ID")
			if !ok {
				return
			}
			var req pointRequest
			if err := httputil.DecodeJSON(r, &req); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}
			match, err := s.matches.AddPoint(r.Context(), id, req.Slot)
			if err != nil {
				writeError(w, "Failed to add point", err)
				return
			}
			httputil.JSON(w, http.StatusOK, match)
		})

		r.Post("/winner", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "Invalid match ID")
			if !ok {
				return
			}
			var req winnerRequest
			if err := httputil.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}
			match, err := s.matches.CompleteFromScore(r.Context(), id, req.ForceSlot)
			if err != nil {
				writeError(w, "Failed to complete match", err)
				return
			}
			httputil.JSON(w, http.StatusOK, match)
		})

		r.Post("/swap", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "Invalid match ID")
			if !ok {
				return
			}
			match, err := s.matches.SwapSlots(r.Context(), id)
			if err != nil {
				writeError(w, "Failed to swap slots", err)
				return
			}
			httputil.JSON(w, http.StatusOK, match)
		})

		r.Post("/current", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "Invalid match ID")
			if !ok {
				return
			}
			match, err := s.matches.SetCurrentMatch(r.Context(), id)
			if err != nil {
				writeError(w, "Failed to set current match", err)
				return
			}
			httputil.JSON(w, http.StatusOK, match)
		})
	})

	return r
}

func urlID(w http.ResponseWriter, r *http.Request, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, msg, err)
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps domain errors onto status codes; anything unknown is a 500.
func writeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrTournamentNotFound),
		errors.Is(err, bracket.ErrMatchNotFound):
		httputil.NotFound(w, err.Error(), err)

	case errors.Is(err, service.ErrEmptyName),
		errors.Is(err, service.ErrNameTooLong),
		errors.Is(err, service.ErrNoCompetitors),
		errors.Is(err, bracket.ErrUnknownFormat),
		errors.Is(err, bracket.ErrInvalidWinner),
		errors.Is(err, bracket.ErrInvalidScore),
		errors.Is(err, bracket.ErrInvalidSlot),
		errors.Is(err, bracket.ErrInsufficientCompetitors),
		errors.Is(err, bracket.ErrWrongFormat):
		httputil.BadRequest(w, err.Error(), err)

	case errors.Is(err, service.ErrBracketExists),
		errors.Is(err, service.ErrNotDraft),
		errors.Is(err, service.ErrNotStarted),
		errors.Is(err, service.ErrDuplicateCompetitor),
		errors.Is(err, bracket.ErrMatchCompleted),
		errors.Is(err, bracket.ErrMatchNotReady),
		errors.Is(err, bracket.ErrPlayoffsSeeded),
		errors.Is(err, bracket.ErrPlayoffsNotFound),
		errors.Is(err, bracket.ErrNotEnoughRanked),
		errors.Is(err, bracket.ErrRoundInProgress),
		errors.Is(err, bracket.ErrRoundExists),
		errors.Is(err, bracket.ErrScoreTied):
		httputil.Conflict(w, err.Error(), err)

	default:
		httputil.InternalServerError(w, msg, err)
	}
}
