package platform

import "testing"

func TestValidMention(t *testing.T) {
	valid := []string{"<@1>", "<@153551102443257856>", "<@&42>"}
	for _, s := range valid {
		if !ValidMention(s) {
			t.Errorf("ValidMention(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "<@>", "<@&>", "<@abc>", "@123", "<#123>", "<@123> ", "x<@123>"}
	for _, s := range invalid {
		if ValidMention(s) {
			t.Errorf("ValidMention(%q) = true, want false", s)
		}
	}
}

func TestParseMention(t *testing.T) {
	id, isRole, err := ParseMention("<@123>")
	if err != nil || id != 123 || isRole {
		t.Fatalf("ParseMention(<@123>) = (%d, %v, %v)", id, isRole, err)
	}

	id, isRole, err = ParseMention("<@&456>")
	if err != nil || id != 456 || !isRole {
		t.Fatalf("ParseMention(<@&456>) = (%d, %v, %v)", id, isRole, err)
	}

	if _, _, err := ParseMention("<@nope>"); err == nil {
		t.Fatal("expected error for invalid mention")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	if got := FormatUserMention(9); got != "<@9>" {
		t.Errorf("FormatUserMention = %q", got)
	}
	if got := FormatRoleMention(9); got != "<@&9>" {
		t.Errorf("FormatRoleMention = %q", got)
	}
	if !IsRoleMention("<@&9>") || IsRoleMention("<@9>") {
		t.Error("IsRoleMention misclassified")
	}
}

func TestPermissionsMissing(t *testing.T) {
	have := PermViewChannel | PermSendMessages
	required := PermViewChannel | PermCreatePrivateThreads | PermSendMessagesInThreads

	missing := have.Missing(required)
	if missing != PermCreatePrivateThreads|PermSendMessagesInThreads {
		t.Fatalf("Missing = %b", missing)
	}
	if missing.Names() != "`create_private_threads`, `send_messages_in_threads`" {
		t.Fatalf("Names = %q", missing.Names())
	}
	if have.Missing(PermViewChannel) != 0 {
		t.Fatal("expected no missing bits")
	}
}
