package server

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/varun-cu-unv/MedAssist/drugdb"
)

type drugRequest struct {
	DrugName string `json:"drug_name"`
	Language string `json:"language"`
}

type drugResponse struct {
	Success  bool           `json:"success"`
	DrugInfo *drugdb.Record `json:"drug_info,omitempty"`
	Source   string         `json:"source,omitempty"`
	Message  string         `json:"message"`
}

// handleDrugInfo resolves a drug name: embedded catalog first, then the
// cache of earlier OpenFDA answers, then OpenFDA itself. A miss is an
// application result, not a transport error, and still answers 200.
func (s *Server) handleDrugInfo(c *fiber.Ctx) error {
	var req drugRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(drugResponse{Message: "invalid request body"})
	}

	name := strings.TrimSpace(req.DrugName)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(drugResponse{Message: "Please provide a drug name."})
	}

	if match, ok := drugdb.Lookup(name); ok {
		msg := fmt.Sprintf("Here's information about %s:", match.Record.GenericName)
		if match.CorrectedTo != "" {
			msg = fmt.Sprintf("Did you mean '%s'? %s", match.CorrectedTo, msg)
		}
		return c.JSON(drugResponse{Success: true, DrugInfo: &match.Record, Source: "local", Message: msg})
	}

	if s.store != nil {
		rec, err := s.store.Get(c.Context(), name)
		if err != nil {
			s.log.Error().Err(err).Str("drug", name).Msg("cache read failed")
		} else if rec != nil {
			return c.JSON(drugResponse{
				Success:  true,
				DrugInfo: rec,
				Source:   "cache",
				Message:  fmt.Sprintf("Here's information about %s:", rec.GenericName),
			})
		}
	}

	if s.fda != nil {
		rec, err := s.fda.Search(c.Context(), name)
		if err != nil {
			s.log.Warn().Err(err).Str("drug", name).Msg("openfda lookup failed")
		} else if rec != nil {
			if s.store != nil {
				if err := s.store.Put(c.Context(), name, *rec); err != nil {
					s.log.Error().Err(err).Str("drug", name).Msg("cache write failed")
				}
			}
			return c.JSON(drugResponse{
				Success:  true,
				DrugInfo: rec,
				Source:   "openfda",
				Message:  fmt.Sprintf("Here's information about %s:", rec.GenericName),
			})
		}
	}

	return c.JSON(drugResponse{
		Message: fmt.Sprintf("Sorry, I couldn't find information about '%s'. %s",
			name, drugdb.Suggestions(name)),
	})
}
