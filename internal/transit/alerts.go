// Package transit reads GTFS-realtime service alerts for subway lines
package transit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/randytsao24/routemix/internal/cache"
)

// ServiceAlert represents an active service alert
type ServiceAlert struct {
	ID          string   `json:"id"`
	Routes      []string `json:"routes"`
	Header      string   `json:"header"`
	Description string   `json:"description"`
}

// AlertService fetches and caches service alerts from a GTFS-RT feed
type AlertService struct {
	feedURL string
	client  *http.Client
	cache   *cache.Cache[[]ServiceAlert]
	now     func() time.Time
}

// NewAlertService creates a new alert service for feedURL
func NewAlertService(feedURL string, timeout time.Duration, cacheTTL time.Duration) *AlertService {
	return &AlertService{
		feedURL: feedURL,
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New[[]ServiceAlert](cacheTTL),
		now:     time.Now,
	}
}

// Close stops the cache sweeper
func (s *AlertService) Close() {
	s.cache.Close()
}

// GetAlerts returns active service alerts, optionally filtered by route
func (s *AlertService) GetAlerts(ctx context.Context, routes []string) ([]ServiceAlert, error) {
	allAlerts, err := s.fetchAlerts(ctx)
	if err != nil {
		return nil, err
	}

	if len(routes) == 0 {
		return allAlerts, nil
	}

	routeSet := make(map[string]bool, len(routes))
	for _, r := range routes {
		routeSet[normalizeRoute(r)] = true
	}

	var filtered []ServiceAlert
	for _, alert := range allAlerts {
		for _, r := range alert.Routes {
			if routeSet[normalizeRoute(r)] {
				filtered = append(filtered, alert)
				break
			}
		}
	}
	return filtered, nil
}

// AlertsForLines returns the headers of active alerts keyed by the requested
// line names. Lines without alerts are absent from the map.
func (s *AlertService) AlertsForLines(ctx context.Context, lines []string) (map[string][]string, error) {
	alerts, err := s.GetAlerts(ctx, lines)
	if err != nil {
		return nil, err
	}

	byLine := make(map[string][]string)
	for _, line := range lines {
		if _, done := byLine[line]; done {
			continue
		}
		for _, alert := range alerts {
			for _, r := range alert.Routes {
				if normalizeRoute(r) == normalizeRoute(line) {
					byLine[line] = append(byLine[line], alert.Header)
					break
				}
			}
		}
	}
	return byLine, nil
}

func (s *AlertService) fetchAlerts(ctx context.Context) ([]ServiceAlert, error) {
	if cached, ok := s.cache.Get("all"); ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building alerts request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching alerts feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alerts feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading alerts response: %w", err)
	}

	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feed); err != nil {
		return nil, fmt.Errorf("parsing alerts protobuf: %w", err)
	}

	alerts := s.parseAlerts(feed)
	s.cache.Set("all", alerts)
	return alerts, nil
}

func (s *AlertService) parseAlerts(feed *gtfs.FeedMessage) []ServiceAlert {
	var alerts []ServiceAlert
	now := s.now().Unix()

	for _, entity := range feed.GetEntity() {
		alert := entity.GetAlert()
		if alert == nil {
			continue
		}

		active := len(alert.GetActivePeriod()) == 0
		for _, period := range alert.GetActivePeriod() {
			start := int64(period.GetStart())
			end := int64(period.GetEnd())
			if now >= start && (end == 0 || now < end) {
				active = true
				break
			}
		}
		if !active {
			continue
		}

		var routes []string
		seen := make(map[string]bool)
		for _, ie := range alert.GetInformedEntity() {
			if routeID := ie.GetRouteId(); routeID != "" && !seen[routeID] {
				seen[routeID] = true
				routes = append(routes, routeID)
			}
		}

		header := translatedText(alert.GetHeaderText())
		if header == "" {
			continue
		}

		alerts = append(alerts, ServiceAlert{
			ID:          entity.GetId(),
			Routes:      routes,
			Header:      header,
			Description: translatedText(alert.GetDescriptionText()),
		})
	}

	return alerts
}

// translatedText prefers Chinese, then English, then whatever comes first
func translatedText(ts *gtfs.TranslatedString) string {
	if ts == nil {
		return ""
	}
	for _, lang := range []string{"zh", "zh-CN", "en", ""} {
		for _, t := range ts.GetTranslation() {
			if t.GetLanguage() == lang {
				return t.GetText()
			}
		}
	}
	if len(ts.GetTranslation()) > 0 {
		return ts.GetTranslation()[0].GetText()
	}
	return ""
}

func normalizeRoute(r string) string {
	return strings.ToLower(strings.TrimSpace(r))
}
