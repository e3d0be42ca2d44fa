package entity

import "time"

// EnquiryDateAttr is the machine name of the client extra attribute holding the enquiry date.
const EnquiryDateAttr = "enquiry_date"

type Client struct {
	Id          int
	FirstName   string
	LastName    string
	Email       string
	Status      string
	DateCreated time.Time
	ExtraAttrs  []ExtraAttr
}

type ExtraAttr struct {
	MachineName string `db:"machine_name" json:"machine_name"`
	Name        string `db:"name" json:"name"`
	Value       string `db:"value" json:"value"`
}

// Attr returns the first non-empty value stored under machineName.
func (c *Client) Attr(machineName string) (string, bool) {
	for _, a := range c.ExtraAttrs {
		if a.MachineName == machineName && a.Value != "" {
			return a.Value, true
		}
	}
	return "", false
}
