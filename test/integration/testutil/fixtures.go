package testutil

import (
	"time"

	"dira/pkg/model"
)

type ListingBuilder struct {
	l model.Listing
}

func NewListingBuilder() *ListingBuilder {
	return &ListingBuilder{
		l: model.Listing{
			HostID:        "host-integration-1",
			Title:         "Sunny two-room flat near the beach",
			ShortID:       "TLV-IT-001",
			Zone:          "tel-aviv",
			AssetType:     "apartment",
			Rooms:         2,
			PricePerNight: 450,
			Status:        model.ListingActive,
			CreatedAt:     time.Now().UTC(),
		},
	}
}

func (b *ListingBuilder) WithHost(hostID string) *ListingBuilder {
	b.l.HostID = hostID
	return b
}

func (b *ListingBuilder) WithShortID(shortID string) *ListingBuilder {
	b.l.ShortID = shortID
	return b
}

func (b *ListingBuilder) WithPricePerNight(price int64) *ListingBuilder {
	b.l.PricePerNight = price
	return b
}

func (b *ListingBuilder) WithStatus(status model.ListingStatus) *ListingBuilder {
	b.l.Status = status
	return b
}

func (b *ListingBuilder) WithViolationCount(count float64) *ListingBuilder {
	b.l.ViolationCount = count
	return b
}

func (b *ListingBuilder) Build() model.Listing {
	return b.l
}

type BookingBuilder struct {
	b model.Booking
}

func NewBookingBuilder(listingID string) *BookingBuilder {
	start := time.Now().UTC().AddDate(0, 0, 7).Truncate(24 * time.Hour)
	return &BookingBuilder{
		b: model.Booking{
			GuestID:   "guest-integration-1",
			HostID:    "host-integration-1",
			ListingID: listingID,
			Status:    model.BookingConfirmed,
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 3),
			BasePrice: 450,
			Version:   1,
			CreatedAt: time.Now().UTC(),
		},
	}
}

func (b *BookingBuilder) WithGuest(guestID string) *BookingBuilder {
	b.b.GuestID = guestID
	return b
}

func (b *BookingBuilder) WithStatus(status model.BookingStatus) *BookingBuilder {
	b.b.Status = status
	return b
}

func (b *BookingBuilder) WithDepositTier(tier model.DepositTier) *BookingBuilder {
	b.b.Financials.DepositTier = tier
	return b
}

func (b *BookingBuilder) Build() model.Booking {
	return b.b
}
