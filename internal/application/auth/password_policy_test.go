package auth

import "testing"

func TestCheckPasswordPolicy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		pw      string
		attrs   []string
		wantErr bool
	}{
		{"ok", "correct-horse-9", nil, false},
		{"short", "abc123", nil, true},
		{"exactly 8 ok", "abcz9xyw", nil, false},
		{"all digits", "12983476", nil, true},
		{"common", "password123", nil, true},
		{"common mixed case", "PassWord123", nil, true},
		{"contains email local part", "xx.jane.doe.xx", []string{"jane.doe@example.com"}, true},
		{"contains local fragment", "hellojane1", []string{"jane.doe@example.com"}, true},
		{"contains last name", "mylovelacepw", []string{"j@x.com", "Ada", "Lovelace"}, true},
		{"short fragment ignored", "adaptable-9", []string{"ada@x.com"}, false},
		{"unrelated attrs ok", "correct-horse-9", []string{"jane.doe@example.com", "Jane", "Doe"}, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := CheckPasswordPolicy(tc.pw, tc.attrs...)
			if tc.wantErr && err == nil {
				t.Fatalf("expected rejection")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected accept, got %v", err)
			}
			if tc.wantErr {
				requireDomainCode(t, err, "weak_password")
			}
		})
	}
}
