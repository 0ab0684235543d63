package db

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

// TagList is an ordered list of free-text labels, stored as a JSON text column
// so the same model works on postgres and the sqlite driver used in tests.
type TagList []string

func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		t = TagList{}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, errors.Wrap(err, "marshal tags")
	}
	return string(b), nil
}

func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = TagList{}
		return nil
	}

	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("unsupported type for tag list")
	}

	if len(b) == 0 {
		*t = TagList{}
		return nil
	}
	return errors.Wrap(json.Unmarshal(b, t), "unmarshal tags")
}
