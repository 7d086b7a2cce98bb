package notify

import "fmt"

// Ключи адресатов. Клиенты и владельцы живут в разных пространствах,
// поэтому их стримы не пересекаются.

func CustomerKey(customerID int64) string {
	return fmt.Sprintf("customer:%d", customerID)
}

func OwnerKey(ownerID int64) string {
	return fmt.Sprintf("owner:%d", ownerID)
}
