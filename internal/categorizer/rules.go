package categorizer

// Rule maps a keyword set to a single category.
type Rule struct {
	ID                     string
	Name                   string
	Keywords               []string
	SuggestedSubcategories []string
}

const (
	generalCategoryID   = "general-merchandise"
	generalCategoryName = "General Merchandise"
	customCategoryID    = "custom-category"
)

// DefaultRules returns the built-in rule table. Order matters: ties go to the earlier rule.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:                     "fashion-apparel",
			Name:                   "Fashion & Apparel",
			Keywords:               []string{"fashion", "apparel", "dress", "saree", "শাড়ি", "পোশাক", "cloth", "panjabi", "shirt", "lehenga", "shoe"},
			SuggestedSubcategories: []string{"Women Fashion", "Men Fashion", "Traditional Wear"},
		},
		{
			ID:                     "electronics",
			Name:                   "Electronics",
			Keywords:               []string{"electronics", "gadget", "earbuds", "smartphone", "laptop", "ইলেকট্রনিক্স", "charger", "headphone"},
			SuggestedSubcategories: []string{"Audio", "Mobile Accessories", "Smart Devices"},
		},
		{
			ID:                     "cosmetics-beauty",
			Name:                   "Cosmetics & Beauty",
			Keywords:               []string{"cosmetics", "beauty", "serum", "skincare", "makeup", "প্রসাধনী", "lotion", "cream"},
			SuggestedSubcategories: []string{"Skin Care", "Hair Care", "Makeup"},
		},
		{
			ID:                     "home-living",
			Name:                   "Home & Living",
			Keywords:               []string{"home", "living", "decor", "lamp", "furniture", "ঘর সাজানো", "lighting", "kitchen"},
			SuggestedSubcategories: []string{"Lighting", "Decor", "Kitchen Essentials"},
		},
		{
			ID:                     "food-beverages",
			Name:                   "Food & Beverages",
			Keywords:               []string{"food", "beverage", "honey", "snack", "খাদ্য", "organic", "tea", "coffee"},
			SuggestedSubcategories: []string{"Gourmet", "Snacks", "Beverages"},
		},
		{
			ID:                     "accessories",
			Name:                   "Accessories",
			Keywords:               []string{"accessories", "wallet", "bag", "belt", "এক্সেসরিজ", "jewelry", "watch"},
			SuggestedSubcategories: []string{"Leather Goods", "Jewellery", "Lifestyle"},
		},
	}
}
