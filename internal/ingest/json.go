package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"deauthguard/internal/normalize"
)

func ParseJSONBytes(data []byte) (*normalize.EventFields, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return ParseJSONMap(obj), nil
}

func ParseJSONMap(obj map[string]interface{}) *normalize.EventFields {
	fields := &normalize.EventFields{Extras: map[string]string{}}
	for key, val := range obj {
		fields.Extras[strings.ToLower(key)] = fmt.Sprint(val)
	}
	fields.Timestamp = firstNonEmpty(fields.Extras, "timestamp", "time", "ts")
	fields.Transmitter = firstNonEmpty(fields.Extras, "transmitter", "src", "src_mac", "addr2", "bssid")
	fields.Destination = firstNonEmpty(fields.Extras, "destination", "dst", "dst_mac", "addr1")
	fields.Reason = firstNonEmpty(fields.Extras, "reason", "reason_code", "code")
	return fields
}
