package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aaravmahajanofficial/art-storefront/internal/messaging"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	"github.com/aaravmahajanofficial/art-storefront/pkg/sendGrid"
)

type NotificationService interface {
	OrderPlaced(ctx context.Context, order *models.Order) error
}

type notificationService struct {
	publisher    messaging.Publisher
	emailService sendGrid.EmailService
	topic        string
}

func NewNotificationService(publisher messaging.Publisher, emailService sendGrid.EmailService, topic string) NotificationService {
	return &notificationService{publisher: publisher, emailService: emailService, topic: topic}
}

// OrderPlaced publishes the order event and mails the customer. Both are
// attempted; the returned error joins whichever failed.
func (n *notificationService) OrderPlaced(ctx context.Context, order *models.Order) error {

	event := models.OrderPlacedEvent{
		OrderID:       order.ID,
		CustomerEmail: order.Customer.Email,
		Total:         order.Total,
		DiscountCode:  order.DiscountCode,
		PaymentStatus: order.PaymentStatus,
		PlacedAt:      order.CreatedAt,
	}

	var errs []error

	if err := n.publisher.PublishEvent(ctx, n.topic, order.ID.String(), event); err != nil {
		errs = append(errs, fmt.Errorf("failed to publish order event: %w", err))
	}

	if err := n.emailService.Send(ctx, confirmationEmail(order)); err != nil {
		errs = append(errs, fmt.Errorf("failed to send confirmation email: %w", err))
	}

	return errors.Join(errs...)
}

func confirmationEmail(order *models.Order) *models.EmailMessage {
	var b strings.Builder

	fmt.Fprintf(&b, "Hei %s,\n\nTakk for bestillingen! Ordrenummer: %s\n\n", order.Customer.Name, order.ID)

	for _, item := range order.Items {
		title := item.Title
		if item.SizeLabel != "" {
			title += " (" + item.SizeLabel + ")"
		}
		fmt.Fprintf(&b, "%d x %s  %s\n", item.Quantity, title, FormatKroner(item.LineTotal))
	}

	fmt.Fprintf(&b, "\nDelsum: %s\n", FormatKroner(order.Subtotal))
	if order.DiscountAmount > 0 {
		fmt.Fprintf(&b, "Rabatt (%s): -%s\n", order.DiscountCode, FormatKroner(order.DiscountAmount))
	}
	fmt.Fprintf(&b, "Frakt: %s\n", FormatKroner(order.ShippingCost))
	if order.ArtistLevy > 0 {
		fmt.Fprintf(&b, "Kunstavgift: %s\n", FormatKroner(order.ArtistLevy))
	}
	fmt.Fprintf(&b, "Totalt: %s\n\n", FormatKroner(order.Total))

	fmt.Fprintf(&b, "Leveringsadresse:\n%s\n%s %s\n", order.ShippingAddress.Street,
		order.ShippingAddress.PostalCode, order.ShippingAddress.City)

	return &models.EmailMessage{
		To:      order.Customer.Email,
		Subject: "Ordrebekreftelse " + order.ID.String()[:8],
		Content: b.String(),
	}
}

// FormatKroner renders øre as "1234,50 kr".
func FormatKroner(ore int64) string {
	sign := ""
	if ore < 0 {
		sign = "-"
		ore = -ore
	}

	return fmt.Sprintf("%s%d,%02d kr", sign, ore/100, ore%100)
}
