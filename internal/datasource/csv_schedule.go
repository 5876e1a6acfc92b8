package datasource

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maschh/sports-edge/internal/models"
)

// Public schedule files
const (
	NFLScheduleURL = "https://raw.githubusercontent.com/nflverse/nflfastR-data/master/data/schedules.csv.gz"
	CFBScheduleURL = "https://raw.githubusercontent.com/sportsdataverse/cfbfastR-data/master/schedules/season_schedules.csv.gz"
)

// ScheduleColumns maps a schedule file's header names to game fields.
// Date lists candidate headers; the first present one is used.
type ScheduleColumns struct {
	Season    string
	Date      []string
	Home      string
	Away      string
	HomeScore string
	AwayScore string
}

// ScheduleCSVSource loads games from a (optionally gzipped) season schedule CSV
type ScheduleCSVSource struct {
	league  models.League
	name    string
	url     string
	columns ScheduleColumns
	// completed reports whether a record is a finished game
	completed  func(rec map[string]string) bool
	httpClient *RateLimitedHTTPClient
	// download retries cover bodies cut off mid-transfer, which the HTTP
	// client does not retry once a 200 has arrived
	attempts int
	backoff  Backoff
	logger   logrus.FieldLogger
}

// DefaultDownloadAttempts is how often a schedule download is tried
const DefaultDownloadAttempts = 3

// NewNFLSource loads nflverse schedules; games with a recorded result are kept
func NewNFLSource(httpClient *RateLimitedHTTPClient, url string, logger logrus.FieldLogger) *ScheduleCSVSource {
	if url == "" {
		url = NFLScheduleURL
	}
	return &ScheduleCSVSource{
		league: models.LeagueNFL,
		name:   "nflverse",
		url:    url,
		columns: ScheduleColumns{
			Season: "season", Date: []string{"gameday", "game_date"}, Home: "home_team", Away: "away_team",
			HomeScore: "home_score", AwayScore: "away_score",
		},
		completed: func(rec map[string]string) bool {
			return strings.TrimSpace(rec["result"]) != ""
		},
		httpClient: httpClient,
		attempts:   DefaultDownloadAttempts,
		backoff:    DefaultBackoff(),
		logger:     orDefault(logger),
	}
}

// NewCFBSource loads cfbfastR schedules; only games with status Final are kept
func NewCFBSource(httpClient *RateLimitedHTTPClient, url string, logger logrus.FieldLogger) *ScheduleCSVSource {
	if url == "" {
		url = CFBScheduleURL
	}
	return &ScheduleCSVSource{
		league: models.LeagueCFB,
		name:   "cfbfastR",
		url:    url,
		columns: ScheduleColumns{
			Season: "season", Date: []string{"start_date"}, Home: "home_team", Away: "away_team",
			HomeScore: "home_points", AwayScore: "away_points",
		},
		completed: func(rec map[string]string) bool {
			return rec["game_status"] == "Final"
		},
		httpClient: httpClient,
		attempts:   DefaultDownloadAttempts,
		backoff:    DefaultBackoff(),
		logger:     orDefault(logger),
	}
}

// League returns the league this source serves
func (s *ScheduleCSVSource) League() models.League {
	return s.league
}

// Name returns the name of the data source
func (s *ScheduleCSVSource) Name() string {
	return s.name
}

// FetchGames downloads the schedule file and returns the finished games
// within the season range
func (s *ScheduleCSVSource) FetchGames(ctx context.Context, startSeason, endSeason int) ([]models.Game, error) {
	data, err := s.download(ctx)
	if err != nil {
		return nil, err
	}

	games, err := s.parse(bytes.NewReader(data), startSeason, endSeason)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"source": s.name,
		"league": s.league,
		"games":  len(games),
	}).Debug("Schedule loaded")
	return models.SortGames(games), nil
}

func (s *ScheduleCSVSource) download(ctx context.Context) ([]byte, error) {
	var data []byte
	attempt := 0
	err := Retry(ctx, s.attempts, s.backoff, func(ctx context.Context) error {
		attempt++
		body, err := fetch(ctx, s.httpClient, s.name, s.url, nil)
		if err != nil {
			return Permanent(err)
		}
		defer body.Close()

		data, err = io.ReadAll(body)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"source":  s.name,
				"attempt": attempt,
			}).Warn("Schedule download interrupted")
			return NewDataSourceError(s.name, ErrCodeNetworkError, "download interrupted", err)
		}
		return nil
	})
	return data, err
}

func (s *ScheduleCSVSource) parse(r io.Reader, startSeason, endSeason int) ([]models.Game, error) {
	reader, err := maybeGunzip(r)
	if err != nil {
		return nil, NewDataSourceError(s.name, ErrCodeInvalidData, "failed to open gzip stream", err)
	}

	cr := csv.NewReader(reader)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, NewDataSourceError(s.name, ErrCodeInvalidData, "failed to read header", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	var missing []string
	dateCol := ""
	for _, col := range s.columns.Date {
		if _, ok := index[col]; ok {
			dateCol = col
			break
		}
	}
	if dateCol == "" {
		missing = append(missing, strings.Join(s.columns.Date, "|"))
	}
	for _, col := range []string{s.columns.Season, s.columns.Home, s.columns.Away, s.columns.HomeScore, s.columns.AwayScore} {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, NewDataSourceError(s.name, ErrCodeInvalidData, "missing columns: "+strings.Join(missing, ", "), nil)
	}

	var games []models.Game
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, NewDataSourceError(s.name, ErrCodeInvalidData, fmt.Sprintf("line %d", line), err)
		}
		rec := make(map[string]string, len(index))
		for name, i := range index {
			if i < len(record) {
				rec[name] = record[i]
			}
		}

		season, err := strconv.Atoi(strings.TrimSpace(rec[s.columns.Season]))
		if err != nil || season < startSeason || season > endSeason {
			continue
		}
		if !s.completed(rec) {
			continue
		}
		date, err := parseGameDate(rec[dateCol])
		if err != nil {
			s.logger.WithField("line", line).WithError(err).Debug("Skipping row with bad date")
			continue
		}
		home, errH := parseScore(rec[s.columns.HomeScore])
		away, errA := parseScore(rec[s.columns.AwayScore])
		if errH != nil || errA != nil {
			continue
		}
		games = append(games, models.NewGame(date, rec[s.columns.Home], rec[s.columns.Away], home, away))
	}
	return games, nil
}

// maybeGunzip transparently decompresses gzip input
func maybeGunzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		return gzip.NewReader(br)
	}
	return br, nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
}

// parseGameDate returns the UTC calendar day of a date or timestamp
func parseGameDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.Day(t), nil
		}
	}
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parseScore(s string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func orDefault(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger == nil {
		return logrus.New()
	}
	return logger
}
