package testkit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// FeedEntry is one <Currency> element of a stub TCMB document.
type FeedEntry struct {
	Code            string
	Unit            int
	ForexBuying     string
	ForexSelling    string
	BanknoteBuying  string
	BanknoteSelling string
}

// TCMBDocument renders a today.xml style document dated date.
func TCMBDocument(date time.Time, entries ...FeedEntry) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<Tarih_Date Tarih="%s" Date="%s" Bulten_No="2025/001">`+"\n",
		date.Format("02.01.2006"), date.Format("01/02/2006"))
	for i, e := range entries {
		unit := e.Unit
		if unit == 0 {
			unit = 1
		}
		fmt.Fprintf(&b, `<Currency CrossOrder="%d" Kod="%s" CurrencyCode="%s">`+"\n", i, e.Code, e.Code)
		fmt.Fprintf(&b, "<Unit>%d</Unit>\n", unit)
		fmt.Fprintf(&b, "<ForexBuying>%s</ForexBuying>\n", e.ForexBuying)
		fmt.Fprintf(&b, "<ForexSelling>%s</ForexSelling>\n", e.ForexSelling)
		fmt.Fprintf(&b, "<BanknoteBuying>%s</BanknoteBuying>\n", e.BanknoteBuying)
		fmt.Fprintf(&b, "<BanknoteSelling>%s</BanknoteSelling>\n", e.BanknoteSelling)
		b.WriteString("</Currency>\n")
	}
	b.WriteString("</Tarih_Date>\n")
	return b.String()
}

// TCMBServer serves a fixed document, or a 503 while Down is set, and counts requests.
type TCMBServer struct {
	*httptest.Server
	doc      atomic.Value
	down     atomic.Bool
	requests atomic.Int64
}

// NewTCMBServer starts a stub feed serving doc. It is closed when the test ends.
func NewTCMBServer(t testing.TB, doc string) *TCMBServer {
	t.Helper()
	s := &TCMBServer{}
	s.doc.Store(doc)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.requests.Add(1)
		if s.down.Load() {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		_, _ = w.Write([]byte(s.doc.Load().(string)))
	}))
	t.Cleanup(s.Close)
	return s
}

// SetDocument replaces the served document.
func (s *TCMBServer) SetDocument(doc string) { s.doc.Store(doc) }

// SetDown makes the feed answer 503 until called with false.
func (s *TCMBServer) SetDown(down bool) { s.down.Store(down) }

// Requests returns how many requests the feed has served.
func (s *TCMBServer) Requests() int64 { return s.requests.Load() }
