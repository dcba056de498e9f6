package domain

import "encoding/json"

// RoleSet is the tolerant decoding of a menu entry's roles field. Historic
// data stores it as a missing field, a bare string, a list, or an object
// whose values are role names.
type RoleSet []Role

// Allows reports whether the set permits the role. An empty set allows
// everyone.
func (s RoleSet) Allows(role Role) bool {
	if len(s) == 0 {
		return true
	}
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

func (s *RoleSet) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = RoleSet{NormalizeRole(single)}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		out := make(RoleSet, 0, len(list))
		for _, v := range list {
			out = append(out, NormalizeRole(v))
		}
		*s = out
		return nil
	}

	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	out := make(RoleSet, 0, len(obj))
	for _, v := range obj {
		out = append(out, NormalizeRole(v))
	}
	*s = out
	return nil
}

func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal([]Role(s))
}
