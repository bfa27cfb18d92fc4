package handler

import (
	"net/http"
	"testing"

	"nsn-odds-data/internal/apierr"
	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/service"
)

func newOddsRouter(p *providerStub) http.Handler {
	regions := testRegions()
	h := New(testTracer, Services{
		Odds:    service.NewOddsService(testTracer, p, regions),
		Regions: regions,
	}, Settings{})
	return newTestRouter(h, Middleware{})
}

func TestGetOddsRequiresRegion(t *testing.T) {
	r := newOddsRouter(&providerStub{odds: sampleOdds("betano")})

	w := doRequest(r, http.MethodGet, "/odds?eventId=123", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != apierr.CodeValidation {
		t.Fatalf("expected %s, got %s", apierr.CodeValidation, code)
	}
}

func TestGetOddsUnknownRegion(t *testing.T) {
	r := newOddsRouter(&providerStub{odds: sampleOdds("betano")})

	w := doRequest(r, http.MethodGet, "/odds?eventId=123&region=zz", nil, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestGetOddsBookmakerOutsideRegion(t *testing.T) {
	r := newOddsRouter(&providerStub{odds: sampleOdds("betano")})

	w := doRequest(r, http.MethodGet, "/odds?eventId=123&region=br&bookmakers=bet365", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetOddsFiltersToRegion(t *testing.T) {
	p := &providerStub{odds: sampleOdds("betano", "bet365")}
	r := newOddsRouter(p)

	w := doRequest(r, http.MethodGet, "/odds?eventId=123&region=br", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body domain.OddsOutput
	decodeBody(t, w, &body)
	if len(body.Bookmakers) != 1 || body.Bookmakers[0].Key != "betano" {
		t.Fatalf("expected only betano, got %+v", body.Bookmakers)
	}
	if len(p.lastBooks) != 2 {
		t.Fatalf("expected region bookmakers sent upstream, got %v", p.lastBooks)
	}
}

func TestGetOddsNoneInRegion(t *testing.T) {
	r := newOddsRouter(&providerStub{odds: sampleOdds("bet365")})

	w := doRequest(r, http.MethodGet, "/odds?eventId=123&region=br", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetOddsProviderTimeout(t *testing.T) {
	r := newOddsRouter(&providerStub{err: apierr.ProviderTimeout("/odds", 30)})

	w := doRequest(r, http.MethodGet, "/odds?eventId=123&region=br", nil, nil)
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", w.Code)
	}
	if code := errorCode(t, w); code != apierr.CodeProviderTimeout {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestGetOddsMultiValidation(t *testing.T) {
	r := newOddsRouter(&providerStub{})

	cases := []string{
		"/odds/multi?region=br",
		"/odds/multi?region=br&eventIds=1,2,3,4,5,6,7,8,9,10,11",
		"/odds/multi?eventIds=1,2",
	}
	for _, target := range cases {
		w := doRequest(r, http.MethodGet, target, nil, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, w.Code)
		}
	}
}

func TestGetOddsMultiSkipsEmpty(t *testing.T) {
	r := newOddsRouter(&providerStub{multi: []domain.MarketOdds{sampleOdds("betano"), sampleOdds("bet365")}})

	w := doRequest(r, http.MethodGet, "/odds/multi?region=br&eventIds=1,2", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body []domain.OddsOutput
	decodeBody(t, w, &body)
	if len(body) != 1 {
		t.Fatalf("expected 1 document, got %d", len(body))
	}
}

func TestGetOddsUpdatedRequiresSince(t *testing.T) {
	r := newOddsRouter(&providerStub{})

	w := doRequest(r, http.MethodGet, "/odds/updated?region=br", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	w = doRequest(r, http.MethodGet, "/odds/updated?region=br&since=1700000000", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGetOddsMovementsNotFound(t *testing.T) {
	r := newOddsRouter(&providerStub{})

	w := doRequest(r, http.MethodGet, "/odds/movements?eventId=123&region=br", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListValueBets(t *testing.T) {
	p := &providerStub{valueBets: []domain.ValueBet{
		{ID: "a", Bookmaker: "Betano", ExpectedValue: 5.2},
		{ID: "b", Bookmaker: "Bet365", ExpectedValue: 4.1},
	}}
	r := newOddsRouter(p)

	w := doRequest(r, http.MethodGet, "/value-bets?region=br", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Data []domain.ValueBet `json:"data"`
	}
	decodeBody(t, w, &body)
	if len(body.Data) != 1 || body.Data[0].ID != "a" {
		t.Fatalf("expected only the betano bet, got %+v", body.Data)
	}
	if p.lastVBFilt.MinEV != service.DefaultMinEV || p.lastVBFilt.Limit != service.DefaultValueBetLimit {
		t.Fatalf("expected defaults, got %+v", p.lastVBFilt)
	}
}

func TestListValueBetsLimitBounds(t *testing.T) {
	r := newOddsRouter(&providerStub{})

	for _, target := range []string{"/value-bets?region=br&limit=51", "/value-bets?region=br&limit=0", "/value-bets?region=br&minEV=abc"} {
		w := doRequest(r, http.MethodGet, target, nil, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, w.Code)
		}
	}
}

func TestListArbitrageBetsEmpty(t *testing.T) {
	r := newOddsRouter(&providerStub{})

	w := doRequest(r, http.MethodGet, "/arbitrage-bets?region=uk", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != `{"data":[]}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestListBookmakersByRegion(t *testing.T) {
	r := newOddsRouter(&providerStub{})

	w := doRequest(r, http.MethodGet, "/bookmakers?region=uk", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body []domain.Bookmaker
	decodeBody(t, w, &body)
	if len(body) != 1 || body[0].Key != "bet365" {
		t.Fatalf("unexpected bookmakers %+v", body)
	}
}
