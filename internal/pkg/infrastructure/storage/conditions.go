package storage

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

type ConditionFunc func(*Condition) *Condition

type Condition struct {
	DeviceID string
	Zone     string
	Status   string
	Search   string

	Before time.Time

	sortBy    string
	sortOrder string

	offset *int
	limit  *int
}

func (c Condition) NamedArgs() pgx.NamedArgs {
	args := pgx.NamedArgs{}

	if c.DeviceID != "" {
		args["device_id"] = c.DeviceID
	}
	if c.Zone != "" {
		args["zone"] = c.Zone
	}
	if c.Status != "" {
		args["status"] = c.Status
	}
	if c.Search != "" {
		args["search"] = "%" + c.Search + "%"
	}
	if !c.Before.IsZero() {
		args["before"] = c.Before.UTC()
	}

	return args
}

func (c Condition) Where(clauses ...string) string {
	where := clauses

	if c.DeviceID != "" {
		where = append(where, "device_id = @device_id")
	}
	if c.Zone != "" {
		where = append(where, "zone = @zone")
	}
	if c.Status != "" {
		where = append(where, "status = @status")
	}
	if c.Search != "" {
		where = append(where, "(device_id ILIKE @search OR name ILIKE @search)")
	}
	if !c.Before.IsZero() {
		where = append(where, "time < @before")
	}

	if len(where) == 0 {
		return ""
	}

	return "WHERE " + strings.Join(where, " AND ")
}

func (c Condition) SortBy(def string) string {
	if c.sortBy == "" {
		return def
	}
	return c.sortBy
}

func (c Condition) SortOrder() string {
	if c.sortOrder == "" {
		return "DESC"
	}
	return c.sortOrder
}

func (c Condition) OffsetLimit() string {
	offsetLimit := ""

	if c.offset != nil {
		offsetLimit += fmt.Sprintf("OFFSET %d ", *c.offset)
	}
	if c.limit != nil {
		offsetLimit += fmt.Sprintf("LIMIT %d ", *c.limit)
	}

	return offsetLimit
}

func (c Condition) Offset() int {
	if c.offset == nil {
		return 0
	}
	return *c.offset
}

func (c Condition) Limit() int {
	if c.limit == nil {
		return 0
	}
	return *c.limit
}

var re = regexp.MustCompile(`[^a-zA-Z0-9 _\-,;().]+|[%]`)

func WithSearch(s string) ConditionFunc {
	return func(c *Condition) *Condition {
		c.Search = strings.TrimSpace(re.ReplaceAllString(s, ""))
		return c
	}
}

func WithDeviceID(deviceID string) ConditionFunc {
	return func(c *Condition) *Condition {
		c.DeviceID = deviceID
		return c
	}
}

func WithZone(zone string) ConditionFunc {
	return func(c *Condition) *Condition {
		c.Zone = zone
		return c
	}
}

func WithStatus(status string) ConditionFunc {
	return func(c *Condition) *Condition {
		c.Status = status
		return c
	}
}

func WithBefore(ts time.Time) ConditionFunc {
	return func(c *Condition) *Condition {
		c.Before = ts
		return c
	}
}

func WithOffset(offset int) ConditionFunc {
	return func(c *Condition) *Condition {
		c.offset = &offset
		return c
	}
}

func WithLimit(limit int) ConditionFunc {
	return func(c *Condition) *Condition {
		c.limit = &limit
		return c
	}
}

func WithSortDesc(desc bool) ConditionFunc {
	return func(c *Condition) *Condition {
		if desc {
			c.sortOrder = "DESC"
		} else {
			c.sortOrder = "ASC"
		}
		return c
	}
}
