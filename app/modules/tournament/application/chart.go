package tournamentservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	tournamentdb "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	chartBackground = drawing.ColorFromHex("1b1f24")
	chartText       = drawing.ColorFromHex("e6e6e6")
	chartLine       = drawing.ColorFromHex("e53935")
	chartDot        = drawing.ColorFromHex("fdd835")
)

// RatingHistoryChart draws a player's tournament rating after every race as
// a PNG. Point 0 is the rating the player entered the tournament with.
func (s *TournamentService) RatingHistoryChart(ctx context.Context, tournamentID, playerID uuid.UUID) (FileResult, error) {
	return withTelemetry(s, ctx, "RatingHistoryChart", tournamentID.String(), func(ctx context.Context) (FileResult, error) {
		if _, err := s.repo.GetTournament(ctx, nil, tournamentID); err != nil {
			if errors.Is(err, tournamentdb.ErrNotFound) {
				return failure[[]byte](ErrTournamentNotFound), nil
			}
			return FileResult{}, err
		}
		races, err := s.repo.GetRaceHistory(ctx, nil, tournamentID)
		if err != nil {
			return FileResult{}, err
		}

		var ratings []int
		for _, r := range races {
			if r.PlayerID != playerID {
				continue
			}
			if len(ratings) == 0 {
				ratings = append(ratings, r.TournamentEloAfter-r.TournamentEloChange)
			}
			ratings = append(ratings, r.TournamentEloAfter)
		}

		png, err := renderRatingHistory(ratings)
		if err != nil {
			return FileResult{}, fmt.Errorf("render chart: %w", err)
		}
		return success(png), nil
	})
}

func renderRatingHistory(ratings []int) ([]byte, error) {
	if len(ratings) == 0 {
		return renderNoDataPlaceholder()
	}

	xValues := make([]float64, len(ratings))
	yValues := make([]float64, len(ratings))
	for i, r := range ratings {
		xValues[i] = float64(i)
		yValues[i] = float64(r)
	}

	// Pad the range so a flat line still has a drawable height.
	lo, hi := slices.Min(ratings), slices.Max(ratings)

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: chartBackground,
		},
		Canvas: chart.Style{
			FillColor: chartBackground,
		},
		XAxis: chart.XAxis{
			Name:           "Race",
			ValueFormatter: chart.IntValueFormatter,
			Style: chart.Style{
				FontColor: chartText,
			},
		},
		YAxis: chart.YAxis{
			Name: "Tournament Rating",
			Style: chart.Style{
				FontColor: chartText,
			},
			Range: &chart.ContinuousRange{
				Min: float64(lo - 10),
				Max: float64(hi + 10),
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Rating",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: chartLine,
					StrokeWidth: 2,
					DotWidth:    4,
					DotColor:    chartDot,
				},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// renderNoDataPlaceholder draws straight onto a renderer; a chart.Chart
// refuses to render without a series.
func renderNoDataPlaceholder() ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No races recorded yet"
	)

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	r.SetFillColor(chartBackground)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(chartText)
	r.SetFontSize(12.0)
	tb := r.MeasureText(msg)
	r.Text(msg, (width-tb.Width())/2, (height+tb.Height())/2)

	buffer := bytes.NewBuffer([]byte{})
	if err := r.Save(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
