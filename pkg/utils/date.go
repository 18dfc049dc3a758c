package utils

import (
	"fmt"
	"time"
)

// ConvertDateTimeWibToUnixTimestamp parses a provider timestamp given in
// WIB ("2006-01-02 15:04:05") into a unix timestamp.
func ConvertDateTimeWibToUnixTimestamp(wibTime string) (int64, error) {
	wibLocation, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return 0, fmt.Errorf("error loading WIB time zone: %v", err)
	}

	t, err := time.ParseInLocation("2006-01-02 15:04:05", wibTime, wibLocation)
	if err != nil {
		return 0, fmt.Errorf("error parsing time: %v", err)
	}

	return t.Unix(), nil
}
