package grbl

import (
	"errors"
	"strconv"
	"strings"

	"github.com/mastercactapus/grblctl/coord"
	"github.com/mastercactapus/grblctl/machine"
)

func parseCoords(data string) (p coord.Point, err error) {
	parts := strings.Split(data, ",")
	if len(parts) < 3 {
		return p, errors.New("invalid number of elements")
	}
	p.X, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return p, err
	}
	p.Y, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return p, err
	}
	p.Z, err = strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return p, err
	}
	return p, nil
}

// ParseStatus parses the last status report in resp, which may be a
// whole response with other lines around it.
func ParseStatus(resp string) (*machine.Status, error) {
	i := strings.LastIndexByte(resp, '<')
	if i < 0 {
		return nil, errors.New("no status report in response")
	}
	data := resp[i+1:]
	j := strings.IndexByte(data, '>')
	if j < 0 {
		return nil, errors.New("unterminated status report")
	}
	data = data[:j]
	parts := strings.Split(data, "|")

	var stat machine.Status
	stat.State = parts[0]
	var wPos *coord.Point
	var err error
	for _, s := range parts[1:] {
		sParts := strings.SplitN(s, ":", 2)
		if len(sParts) != 2 {
			continue
		}
		switch sParts[0] {
		case "MPos":
			stat.MPos, err = parseCoords(sParts[1])
		case "WPos":
			var p coord.Point
			p, err = parseCoords(sParts[1])
			wPos = &p
		case "WCO":
			stat.WCO, err = parseCoords(sParts[1])
		case "F":
			stat.Feed, err = strconv.ParseFloat(sParts[1], 64)
		case "FS":
			fs := strings.Split(sParts[1], ",")
			if len(fs) != 2 {
				return nil, errors.New("invalid FS field: " + sParts[1])
			}
			stat.Feed, err = strconv.ParseFloat(fs[0], 64)
			if err == nil {
				stat.Speed, err = strconv.ParseFloat(fs[1], 64)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if wPos != nil {
		stat.MPos = wPos.Add(stat.WCO)
	}
	return &stat, nil
}
