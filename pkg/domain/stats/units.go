package stats

import "math"

// TimeUnit is a closed enum of time units supported by the conversion
// helpers below.
type TimeUnit string

const (
	TimeMilliseconds TimeUnit = "milliseconds"
	TimeSeconds      TimeUnit = "seconds"
	TimeMinutes      TimeUnit = "minutes"
	TimeHours        TimeUnit = "hours"
	TimeDays         TimeUnit = "days"
)

// timeToMS converts one unit of t into milliseconds.
var timeToMS = map[TimeUnit]float64{
	TimeMilliseconds: 1,
	TimeSeconds:      1000,
	TimeMinutes:      60 * 1000,
	TimeHours:        60 * 60 * 1000,
	TimeDays:         24 * 60 * 60 * 1000,
}

// DataUnit is a closed enum of data-size units, using binary (1024-based)
// factors.
type DataUnit string

const (
	DataBytes     DataUnit = "bytes"
	DataKilobytes DataUnit = "kilobytes"
	DataMegabytes DataUnit = "megabytes"
	DataGigabytes DataUnit = "gigabytes"
	DataTerabytes DataUnit = "terabytes"
)

var dataToBytes = map[DataUnit]float64{
	DataBytes:     1,
	DataKilobytes: 1024,
	DataMegabytes: 1024 * 1024,
	DataGigabytes: 1024 * 1024 * 1024,
	DataTerabytes: 1024 * 1024 * 1024 * 1024,
}

// ConvertTime converts value from one TimeUnit to another. Negative input
// returns (0, false).
func ConvertTime(value float64, from, to TimeUnit) (float64, bool) {
	if value < 0 {
		return 0, false
	}
	fromFactor, ok := timeToMS[from]
	if !ok {
		return 0, false
	}
	toFactor, ok := timeToMS[to]
	if !ok {
		return 0, false
	}
	return value * fromFactor / toFactor, true
}

// ConvertData converts value from one DataUnit to another. Negative input
// returns (0, false).
func ConvertData(value float64, from, to DataUnit) (float64, bool) {
	if value < 0 {
		return 0, false
	}
	fromFactor, ok := dataToBytes[from]
	if !ok {
		return 0, false
	}
	toFactor, ok := dataToBytes[to]
	if !ok {
		return 0, false
	}
	return value * fromFactor / toFactor, true
}

var timeUnitsLargestFirst = []TimeUnit{TimeDays, TimeHours, TimeMinutes, TimeSeconds, TimeMilliseconds}

// AutoScaleTime picks the largest time unit for which the converted value
// is >= 1, rounding the result to precision decimal places. valueMS is the
// input expressed in milliseconds.
func AutoScaleTime(valueMS float64, precision int) (float64, TimeUnit) {
	if valueMS < 0 {
		return round(valueMS, precision), TimeMilliseconds
	}
	for _, unit := range timeUnitsLargestFirst {
		scaled, _ := ConvertTime(valueMS, TimeMilliseconds, unit)
		if scaled >= 1 {
			return round(scaled, precision), unit
		}
	}
	return round(valueMS, precision), TimeMilliseconds
}

var dataUnitsLargestFirst = []DataUnit{DataTerabytes, DataGigabytes, DataMegabytes, DataKilobytes, DataBytes}

// AutoScaleData picks the largest data unit for which the converted value
// is >= 1, rounding the result to precision decimal places. valueBytes is
// the input expressed in bytes.
func AutoScaleData(valueBytes float64, precision int) (float64, DataUnit) {
	if valueBytes < 0 {
		return round(valueBytes, precision), DataBytes
	}
	for _, unit := range dataUnitsLargestFirst {
		scaled, _ := ConvertData(valueBytes, DataBytes, unit)
		if scaled >= 1 {
			return round(scaled, precision), unit
		}
	}
	return round(valueBytes, precision), DataBytes
}

func round(v float64, precision int) float64 {
	factor := math.Pow(10, float64(precision))
	return math.Round(v*factor) / factor
}
