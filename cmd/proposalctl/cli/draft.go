package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
	"github.com/odyssey-erp/proposal-wizard/internal/wizard"
)

func (e *env) newCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Discard the open draft and start a new proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			id := s.store.CreateNewProposal()
			p := s.store.Current()
			fmt.Fprintf(e.out(), "created %s (%s)\n", p.Metadata.ProposalNumber, id)
			return nil
		},
	}
}

func (e *env) showCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the open draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			st := s.store.State()
			switch format {
			case "json":
				return writeJSON(e.out(), st.Current)
			case "yaml":
				return writeYAML(e.out(), st.Current)
			case "text":
				printDraft(e, st)
				return nil
			}
			return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "text", "Output format: text, json or yaml")
	return cmd
}

func printDraft(e *env, st wizard.State) {
	p := st.Current
	w := tabwriter.NewWriter(e.out(), 0, 4, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "Proposal\t%s rev %s\n", p.Metadata.ProposalNumber, p.Metadata.Revision)
	fmt.Fprintf(w, "Status\t%s\n", p.Metadata.Status)
	fmt.Fprintf(w, "Client\t%s\n", p.ClientDetails.ClientName)
	if p.ClientDetails.ProjectName != "" {
		fmt.Fprintf(w, "Project\t%s\n", p.ClientDetails.ProjectName)
	}
	fmt.Fprintf(w, "Equipment\t%d item(s)\n", len(p.TechnicalSpecs.Equipment))
	for _, eq := range p.TechnicalSpecs.Equipment {
		fmt.Fprintf(w, "  %d.\t%s %s x%d\n", eq.LineItemNo, eq.TagNumber, eq.Type, eq.Quantity)
	}
	fmt.Fprintf(w, "Pricing\t%d line(s)\n", len(p.Commercials.PricingItems))
	for _, item := range p.Commercials.PricingItems {
		fmt.Fprintf(w, "  %d.\t%s %g x %.2f = %.2f\n", item.LineItemNo, item.Description, item.Quantity, item.UnitPrice, item.TotalPrice)
	}
	c := p.Commercials
	fmt.Fprintf(w, "Sub total\t%s %.2f\n", c.Currency, c.SubTotal)
	fmt.Fprintf(w, "GST %g%%\t%s %.2f\n", c.Taxes.GSTRate, c.Currency, c.TotalTaxes)
	fmt.Fprintf(w, "Grand total\t%s %.2f\n", c.Currency, c.GrandTotal)
	fmt.Fprintf(w, "Dirty\t%t\n", st.IsDirty)
	if st.LastSavedAt != nil {
		fmt.Fprintf(w, "Last saved\t%s\n", st.LastSavedAt.Format("2006-01-02 15:04:05"))
	}
	if len(st.SyncQueue) > 0 {
		fmt.Fprintf(w, "Pending sync\t%s\n", strings.Join(st.SyncQueue, ", "))
	}
}

func (e *env) clientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Edit client details",
	}

	var (
		name, code, industry, project, enquiryRef, enquiryDate, deliveryDate string
		line1, line2, city, state, pincode, country                          string
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Update client fields; only flags given are changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			f := cmd.Flags()
			s.store.UpdateClientDetails(wizard.ClientDetailsPatch{
				ClientName:           changed(f, "name", name),
				ClientCode:           changed(f, "code", code),
				Industry:             changed(f, "industry", industry),
				ProjectName:          changed(f, "project", project),
				EnquiryReference:     changed(f, "enquiry-ref", enquiryRef),
				EnquiryDate:          changed(f, "enquiry-date", enquiryDate),
				ProposedDeliveryDate: changed(f, "delivery-date", deliveryDate),
			})
			s.store.UpdateAddress(wizard.AddressPatch{
				Line1:   changed(f, "line1", line1),
				Line2:   changed(f, "line2", line2),
				City:    changed(f, "city", city),
				State:   changed(f, "state", state),
				Pincode: changed(f, "pincode", pincode),
				Country: changed(f, "country", country),
			})
			fmt.Fprintf(e.out(), "client: %s\n", s.store.Current().ClientDetails.ClientName)
			return nil
		},
	}
	sf := set.Flags()
	sf.StringVar(&name, "name", "", "Client name")
	sf.StringVar(&code, "code", "", "Client code")
	sf.StringVar(&industry, "industry", "", "Industry")
	sf.StringVar(&project, "project", "", "Project name")
	sf.StringVar(&enquiryRef, "enquiry-ref", "", "Enquiry reference")
	sf.StringVar(&enquiryDate, "enquiry-date", "", "Enquiry date (YYYY-MM-DD)")
	sf.StringVar(&deliveryDate, "delivery-date", "", "Proposed delivery date (YYYY-MM-DD)")
	sf.StringVar(&line1, "line1", "", "Address line 1")
	sf.StringVar(&line2, "line2", "", "Address line 2")
	sf.StringVar(&city, "city", "", "City")
	sf.StringVar(&state, "state", "", "State")
	sf.StringVar(&pincode, "pincode", "", "Pincode")
	sf.StringVar(&country, "country", "", "Country")

	var contact proposal.Contact
	addContact := &cobra.Command{
		Use:   "contact",
		Short: "Add a client contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(contact.Name) == "" {
				return errors.New("--name is required")
			}
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			id := s.store.AddContact(contact)
			if contact.IsPrimary {
				s.store.SetPrimaryContact(id)
			}
			fmt.Fprintf(e.out(), "contact %s added\n", id)
			return nil
		},
	}
	cf := addContact.Flags()
	cf.StringVar(&contact.Name, "name", "", "Contact name")
	cf.StringVar(&contact.Designation, "designation", "", "Designation")
	cf.StringVar(&contact.Email, "email", "", "Email")
	cf.StringVar(&contact.Phone, "phone", "", "Phone")
	cf.BoolVar(&contact.IsPrimary, "primary", false, "Make this the primary contact")

	var (
		site       proposal.Site
		selectSite bool
	)
	addSite := &cobra.Command{
		Use:   "site",
		Short: "Add a client site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(site.Name) == "" {
				return errors.New("--name is required")
			}
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			id := s.store.AddSite(site)
			if selectSite {
				s.store.SelectSite(id)
			}
			fmt.Fprintf(e.out(), "site %s added\n", id)
			return nil
		},
	}
	tf := addSite.Flags()
	tf.StringVar(&site.Name, "name", "", "Site name")
	tf.StringVar(&site.Address, "address", "", "Street address")
	tf.StringVar(&site.City, "city", "", "City")
	tf.StringVar(&site.State, "state", "", "State")
	tf.StringVar(&site.Pincode, "pincode", "", "Pincode")
	tf.StringVar(&site.Country, "country", "", "Country")
	tf.BoolVar(&selectSite, "select", false, "Quote the proposal for this site")

	cmd.AddCommand(set, addContact, addSite)
	return cmd
}

func (e *env) equipmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equipment",
		Short: "Manage equipment lines",
	}

	var item proposal.Equipment
	add := &cobra.Command{
		Use:   "add",
		Short: "Append an equipment line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			id := s.store.AddEquipment(item)
			fmt.Fprintf(e.out(), "equipment %s added (%d total)\n", id, len(s.store.Current().TechnicalSpecs.Equipment))
			return nil
		},
	}
	f := add.Flags()
	f.StringVar(&item.TagNumber, "tag", "", "Tag number")
	f.StringVar(&item.Type, "type", "", "Equipment type")
	f.StringVar(&item.Model, "model", "", "Model")
	f.StringVar(&item.Capacity, "capacity", "", "Capacity")
	f.StringVar(&item.MOC, "moc", "", "Material of construction")
	f.Float64Var(&item.MotorHP, "hp", 0, "Motor HP")
	f.IntVar(&item.Quantity, "qty", 1, "Quantity")
	f.StringVar(&item.Description, "description", "", "Description")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an equipment line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			s.store.RemoveEquipment(args[0])
			fmt.Fprintf(e.out(), "%d equipment line(s) left\n", len(s.store.Current().TechnicalSpecs.Equipment))
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func (e *env) pricingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pricing",
		Short: "Manage the price schedule",
	}

	var item proposal.PricingItem
	add := &cobra.Command{
		Use:   "add",
		Short: "Append a price line and recompute totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			s.store.AddPricingItem(item)
			c := s.store.Current().Commercials
			fmt.Fprintf(e.out(), "sub total %.2f, taxes %.2f, grand total %.2f %s\n", c.SubTotal, c.TotalTaxes, c.GrandTotal, c.Currency)
			return nil
		},
	}
	f := add.Flags()
	f.StringVar(&item.Description, "description", "", "Line description")
	f.StringVar(&item.EquipmentID, "equipment", "", "Equipment id this line prices")
	f.Float64Var(&item.Quantity, "qty", 1, "Quantity")
	f.Float64Var(&item.UnitPrice, "price", 0, "Unit price")

	var currency string
	var gst float64
	terms := &cobra.Command{
		Use:   "set",
		Short: "Set currency and GST rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			patch := wizard.CommercialsPatch{}
			if cmd.Flags().Changed("currency") {
				code := proposal.Currency(strings.ToUpper(currency))
				if !code.Valid() {
					return fmt.Errorf("unsupported currency %q", currency)
				}
				patch.Currency = &code
			}
			if cmd.Flags().Changed("gst") {
				patch.GSTRate = &gst
			}
			s.store.UpdateCommercials(patch)
			c := s.store.Current().Commercials
			fmt.Fprintf(e.out(), "grand total %.2f %s\n", c.GrandTotal, c.Currency)
			return nil
		},
	}
	terms.Flags().StringVar(&currency, "currency", "", "Currency code (INR, USD, EUR, GBP)")
	terms.Flags().Float64Var(&gst, "gst", proposal.DefaultGSTRate, "GST rate in percent")

	cmd.AddCommand(add, terms)
	return cmd
}

func (e *env) nextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Walk the wizard forward until a step is incomplete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			for !s.store.IsComplete() {
				if err := s.store.Advance(); err != nil {
					var verr *wizard.StepValidationError
					if errors.As(err, &verr) {
						fmt.Fprintf(e.out(), "stopped at %s: %s\n", verr.Step, err)
						return nil
					}
					return err
				}
			}
			fmt.Fprintf(e.out(), "all steps complete, ready for %s\n", s.store.CurrentStep())
			return nil
		},
	}
}

func (e *env) saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the open draft to the proposal library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.store.SaveProposal(cmd.Context()); err != nil {
				return err
			}
			st := s.store.State()
			fmt.Fprintf(e.out(), "saved %s, %d pending sync\n", st.Current.Metadata.ProposalNumber, len(st.SyncQueue))
			return nil
		},
	}
}

func (e *env) submitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Submit the open draft for approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.store.SubmitProposal(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(e.out(), "%s is %s\n", s.store.Current().Metadata.ProposalNumber, s.store.Current().Metadata.Status)
			return nil
		},
	}
}

func (e *env) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved proposals, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			items, err := s.library.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(e.out(), "no saved proposals")
				return nil
			}
			w := tabwriter.NewWriter(e.out(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNUMBER\tCLIENT\tSTATUS\tTOTAL\tSYNCED")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%t\n", item.ID, item.ProposalNumber, item.ClientName, item.Status, item.GrandTotal, item.IsSynced)
			}
			return w.Flush()
		},
	}
}

func (e *env) loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <id>",
		Short: "Open a saved proposal as the draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.store.LoadProposal(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(e.out(), "loaded %s\n", s.store.Current().Metadata.ProposalNumber)
			return nil
		},
	}
}

// changed returns &value when the flag was set on the command line.
func changed(f interface{ Changed(string) bool }, name, value string) *string {
	if !f.Changed(name) {
		return nil
	}
	return &value
}
