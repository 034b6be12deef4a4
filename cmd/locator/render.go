package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/zatekoja/pharmacy-locator/internal/application/services"
	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/domain/providers"
)

const statusUnverified = "status unverified"

type resultView struct {
	Rank          int     `json:"rank"`
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Phone         string  `json:"phone"`
	Hours         string  `json:"hours"`
	IsOpen        bool    `json:"is_open"`
	Status        string  `json:"status"`
	DistanceKm    float64 `json:"distance_km"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	DirectionsURL string  `json:"directions_url"`
}

type sessionView struct {
	SessionID    string               `json:"session_id"`
	UserLocation *entities.Coordinate `json:"user_location"`
	RadiusKm     float64              `json:"radius_km"`
	ResolvedAt   time.Time            `json:"resolved_at"`
	Results      []resultView         `json:"results"`
	Notice       string               `json:"notice,omitempty"`
}

func statusLabel(p entities.Pharmacy) string {
	if !p.HasHours() {
		return statusUnverified
	}
	if p.IsOpen {
		return "Open"
	}
	return "Closed"
}

func formatDistance(km float64) string {
	if km < 1 {
		return strconv.FormatFloat(km*1000, 'f', 0, 64) + " m"
	}
	return strconv.FormatFloat(km, 'f', 2, 64) + " km"
}

func formatRadius(km float64) string {
	return strconv.FormatFloat(km, 'f', -1, 64)
}

func emptyNotice(radiusKm float64) string {
	return fmt.Sprintf("No on-duty pharmacy within %s km", formatRadius(radiusKm))
}

// geolocationNotice maps a Locate failure to the message shown to the user.
// It returns false for errors that are not geolocation outcomes.
func geolocationNotice(err error) (string, bool) {
	switch {
	case errors.Is(err, providers.ErrGeolocationUnavailable):
		return "Geolocation is not available. Pass -lat and -lon or set USER_LAT and USER_LON.", true
	case errors.Is(err, providers.ErrGeolocationDenied):
		return "Your location could not be determined. Location access was denied or the lookup failed.", true
	default:
		return "", false
	}
}

func buildView(session *entities.Session) sessionView {
	view := sessionView{
		SessionID:    session.ID,
		UserLocation: session.UserLocation,
		RadiusKm:     session.RadiusKm,
		ResolvedAt:   session.ResolvedAt,
		Results:      make([]resultView, 0, len(session.LastResolution)),
	}
	for i, r := range session.LastResolution {
		row := resultView{
			Rank:       i + 1,
			ID:         r.ID,
			Name:       r.Name,
			Address:    r.Address,
			Phone:      r.Phone,
			Hours:      r.Hours,
			IsOpen:     r.IsOpen,
			Status:     statusLabel(r.Pharmacy),
			DistanceKm: r.DistanceKm,
			Latitude:   r.Location.Latitude,
			Longitude:  r.Location.Longitude,
		}
		if session.UserLocation != nil {
			row.DirectionsURL = services.DirectionsURL(*session.UserLocation, r.Location)
		}
		view.Results = append(view.Results, row)
	}
	if session.Located() && len(view.Results) == 0 {
		view.Notice = emptyNotice(session.RadiusKm)
	}
	return view
}

// renderSession writes the ranked list as a table or as JSON.
func renderSession(w io.Writer, session *entities.Session, asJSON bool) error {
	view := buildView(session)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	if view.Notice != "" {
		_, err := fmt.Fprintln(w, view.Notice)
		return err
	}

	if session.UserLocation != nil {
		fmt.Fprintf(w, "%d on-duty pharmacies within %s km of %s, %s\n\n",
			len(view.Results), formatRadius(view.RadiusKm),
			strconv.FormatFloat(session.UserLocation.Latitude, 'f', -1, 64),
			strconv.FormatFloat(session.UserLocation.Longitude, 'f', -1, 64))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tDISTANCE\tSTATUS\tHOURS\tPHONE\tADDRESS\tDIRECTIONS")
	for _, r := range view.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Rank, r.Name, formatDistance(r.DistanceKm), r.Status, r.Hours, r.Phone, r.Address, r.DirectionsURL)
	}
	return tw.Flush()
}

// renderNotice writes a geolocation notice in the selected format.
func renderNotice(w io.Writer, session *entities.Session, notice string, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, notice)
		return err
	}
	view := buildView(session)
	view.Notice = notice
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
