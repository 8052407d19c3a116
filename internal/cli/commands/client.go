package commands

import (
	"CaseKeeper/internal/cli/api"
	"CaseKeeper/internal/cli/repo/fs"
	"CaseKeeper/internal/config"
	"CaseKeeper/internal/model"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"
)

const (
	adminHeader = "X-Admin-Password"
	actorHeader = "X-Actor-Name"

	timeLayout = "2006-01-02 15:04:05"
)

// settings - локальные настройки CLI (секрет администратора, имя сотрудника).
var settings = fs.SettingsFSStore{}

// casesURL builds <server>/api/cases[/<escaped part>...].
func casesURL(cfg *config.Config, parts ...string) string {
	u := strings.TrimRight(cfg.ServerURL, "/") + "/api/cases"
	for _, p := range parts {
		u += "/" + url.PathEscape(p)
	}
	return u
}

// adminSecret: флаг/ENV имеет приоритет над сохранённым командой admin.
func adminSecret(cfg *config.Config) string {
	if s := strings.TrimSpace(cfg.AdminPassword); s != "" {
		return s
	}
	s, _ := settings.LoadAdminSecret()
	return s
}

// actorName picks the explicit argument, then --actor/CLIENT_ACTOR, then the stored actor.
func actorName(cfg *config.Config, explicit string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return s
	}
	if s := strings.TrimSpace(cfg.ClientActor); s != "" {
		return s
	}
	s, _ := settings.LoadActor()
	return s
}

// checkResponse turns a non-2xx answer into an error carrying the server message.
func checkResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg := api.ErrorMessage(body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("server responded %d: %s", resp.StatusCode, msg)
}

func decodeCase(body []byte) (model.Case, error) {
	var c model.Case
	if err := json.Unmarshal(body, &c); err != nil {
		return model.Case{}, fmt.Errorf("decode case: %w", err)
	}
	if c.ID == "" {
		return model.Case{}, errors.New("decode case: empty id in response")
	}
	return c, nil
}

func location(c model.Case) string {
	return fmt.Sprintf("%d-%d-%d", c.CabinetNo, c.ShelfNo, c.SequenceNo)
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func printCase(c model.Case) {
	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", c.ID)
	fmt.Fprintf(w, "Farmer:\t%s\n", c.FarmerName)
	fmt.Fprintf(w, "Account:\t%s\n", c.FarmerAccountNo)
	fmt.Fprintf(w, "Location:\t%s\n", location(c))
	fmt.Fprintf(w, "Status:\t%s\n", c.Status)
	if c.BorrowedByUserName != nil {
		fmt.Fprintf(w, "Borrowed by:\t%s\n", *c.BorrowedByUserName)
	}
	if c.BorrowedDate != nil {
		fmt.Fprintf(w, "Borrowed at:\t%s\n", formatTime(*c.BorrowedDate))
	}
	if c.ReturnedDate != nil {
		fmt.Fprintf(w, "Returned at:\t%s\n", formatTime(*c.ReturnedDate))
	}
	fmt.Fprintf(w, "Last update:\t%s by %s\n", formatTime(c.LastUpdatedTimestamp), c.LastUpdatedByUserName)
	_ = w.Flush()
}
