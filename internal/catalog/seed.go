package catalog

import "github.com/alchepastry/pastryadmin/internal/domain"

// SeedProducts returns the demonstration catalog present at startup.
func SeedProducts(currency string) []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Chocolate Cake", Category: domain.CategoryCake, Price: FormatPrice(currency, "20"), Description: "A delicious chocolate cake.", Image: "/images/image2.jpg", Stock: 10},
		{ID: 2, Name: "Sugar Cookie", Category: domain.CategoryCookie, Price: FormatPrice(currency, "5"), Description: "Sweet and crunchy sugar cookie.", Image: "/images/image3.png", Stock: 20},
		{ID: 3, Name: "Strawberry Cake", Category: domain.CategoryCake, Price: FormatPrice(currency, "25"), Description: "A fresh strawberry-flavored cake.", Image: "/images/image1.jpg", Stock: 15},
		{ID: 4, Name: "Oatmeal Cookie", Category: domain.CategoryCookie, Price: FormatPrice(currency, "4"), Description: "A healthy oatmeal cookie.", Image: "/images/image1.jpg", Stock: 30},
	}
}
