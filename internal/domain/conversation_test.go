package domain

import (
	"strings"
	"testing"
)

func TestNormalizePair(t *testing.T) {
	cases := []struct {
		a, b      uint64
		low, high uint64
	}{
		{1, 2, 1, 2},
		{2, 1, 1, 2},
		{7, 7, 7, 7},
		{100, 3, 3, 100},
	}

	for _, tc := range cases {
		low, high := NormalizePair(tc.a, tc.b)
		if low != tc.low || high != tc.high {
			t.Errorf("NormalizePair(%d, %d) = (%d, %d), want (%d, %d)",
				tc.a, tc.b, low, high, tc.low, tc.high)
		}
	}
}

func TestConversationParticipants(t *testing.T) {
	conv := &Conversation{ParticipantLowID: 3, ParticipantHighID: 9}

	if !conv.HasParticipant(3) || !conv.HasParticipant(9) {
		t.Error("Expected both pair members to be participants")
	}
	if conv.HasParticipant(5) {
		t.Error("Expected outsider not to be a participant")
	}

	if got := conv.OtherParticipantID(3); got != 9 {
		t.Errorf("Expected other participant 9, got %d", got)
	}
	if got := conv.OtherParticipantID(9); got != 3 {
		t.Errorf("Expected other participant 3, got %d", got)
	}
}

func TestConversationToResponse_ViewerSide(t *testing.T) {
	low := &User{ID: 3, Username: "seller"}
	high := &User{ID: 9, Username: "buyer"}
	conv := &Conversation{
		ID:                1,
		ParticipantLowID:  3,
		ParticipantHighID: 9,
		ParticipantLow:    low,
		ParticipantHigh:   high,
	}

	asSeller := conv.ToResponse(3, 2)
	if asSeller.Participant.Username != "buyer" {
		t.Errorf("Expected seller to see buyer, got %q", asSeller.Participant.Username)
	}
	if asSeller.UnreadCount != 2 {
		t.Errorf("Expected unread 2, got %d", asSeller.UnreadCount)
	}

	asBuyer := conv.ToResponse(9, 0)
	if asBuyer.Participant.Username != "seller" {
		t.Errorf("Expected buyer to see seller, got %q", asBuyer.Participant.Username)
	}
}

func TestMessagePreview(t *testing.T) {
	short := &Message{Content: "short enough"}
	if got := short.Preview(); got != "short enough" {
		t.Errorf("Expected content unchanged, got %q", got)
	}

	long := &Message{Content: strings.Repeat("a", MessagePreviewLength+50)}
	if got := long.Preview(); len([]rune(got)) != MessagePreviewLength {
		t.Errorf("Expected preview of %d runes, got %d", MessagePreviewLength, len([]rune(got)))
	}

	// Truncation counts runes, not bytes
	multibyte := &Message{Content: strings.Repeat("ü", MessagePreviewLength+1)}
	got := multibyte.Preview()
	if len([]rune(got)) != MessagePreviewLength {
		t.Errorf("Expected %d runes for multibyte content, got %d", MessagePreviewLength, len([]rune(got)))
	}
	if strings.Contains(got, "�") {
		t.Error("Preview split a multibyte character")
	}
}

func TestValidNotificationType(t *testing.T) {
	for _, valid := range []string{
		NotificationTypeNewMessage,
		NotificationTypeListingInterest,
		NotificationTypePriceUpdate,
		NotificationTypeListingSold,
		NotificationTypeSystemNotice,
		NotificationTypeListingCreated,
	} {
		if !ValidNotificationType(valid) {
			t.Errorf("Expected %q to be a valid notification type", valid)
		}
	}

	for _, invalid := range []string{"", "new_message", "SOMETHING_ELSE"} {
		if ValidNotificationType(invalid) {
			t.Errorf("Expected %q to be rejected", invalid)
		}
	}
}

func TestListingValidators(t *testing.T) {
	if !ValidListingStatus(ListingStatusActive) || ValidListingStatus("PENDING") {
		t.Error("Listing status validation is wrong")
	}
	if !ValidListingAction(ListingActionRent) || ValidListingAction("TRADE") {
		t.Error("Listing action validation is wrong")
	}
	if !ValidListingCategory(ListingCategoryRealEstate) || ValidListingCategory("BOATS") {
		t.Error("Listing category validation is wrong")
	}
}

func TestListingToSummary_Thumbnail(t *testing.T) {
	bare := &Listing{ID: 1, Title: "No photos"}
	if got := bare.ToSummary().ThumbURL; got != "" {
		t.Errorf("Expected empty thumbnail, got %q", got)
	}

	withImages := &Listing{
		ID:    2,
		Title: "With photos",
		Images: []ListingImage{
			{URL: "https://cdn.test/first.jpg", SortOrder: 0},
			{URL: "https://cdn.test/second.jpg", SortOrder: 1},
		},
	}
	if got := withImages.ToSummary().ThumbURL; got != "https://cdn.test/first.jpg" {
		t.Errorf("Expected first image as thumbnail, got %q", got)
	}
}
