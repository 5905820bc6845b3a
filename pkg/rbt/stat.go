package rbt

// StatField is the top-level outcome field of every Review Board response.
const StatField = "stat"

// Outcome values accepted by CheckStat.
const (
	StatOK   = "ok"
	StatFail = "fail"
)

// CheckStat requires payload to carry a stat field whose value is exactly
// "ok" or "fail". The payload is returned unchanged.
func CheckStat(payload map[string]interface{}) (map[string]interface{}, error) {
	stat, ok := payload[StatField]
	if !ok {
		return nil, ErrMissingStat
	}

	if stat != StatOK && stat != StatFail {
		return nil, &StatError{Stat: stat}
	}

	return payload, nil
}
