package parse

import "regexp"

// ParticipantKind tells saved contacts apart from bare phone numbers.
type ParticipantKind string

const (
	KindNumber  ParticipantKind = "number"
	KindContact ParticipantKind = "contact"
)

type Participant struct {
	Name     string
	Kind     ParticipantKind
	Messages int
}

var phoneRe = regexp.MustCompile(`^\+?\d`)

// Participants lists message authors in first-seen order. System notices are
// not attributed to anyone.
func Participants(msgs []Message) []Participant {
	var out []Participant
	idx := make(map[string]int)
	for _, m := range msgs {
		if m.User == SystemUser || m.User == "" {
			continue
		}
		if i, ok := idx[m.User]; ok {
			out[i].Messages++
			continue
		}
		kind := KindContact
		if phoneRe.MatchString(m.User) {
			kind = KindNumber
		}
		idx[m.User] = len(out)
		out = append(out, Participant{Name: m.User, Kind: kind, Messages: 1})
	}
	return out
}
