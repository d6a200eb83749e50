package data

import "github.com/rotisserie/eris"

var (
    ErrNotFound      = eris.New("data file not found")
    ErrEmpty         = eris.New("data file has no rows or columns")
    ErrMissingColumn = eris.New("missing column")
)

// Bank churn columns.
const (
    ColClientNum        = "CLIENTNUM"
    ColAttritionFlag    = "Attrition_Flag"
    ColCustomerAge      = "Customer_Age"
    ColGender           = "Gender"
    ColDependentCount   = "Dependent_count"
    ColEducationLevel   = "Education_Level"
    ColMaritalStatus    = "Marital_Status"
    ColIncomeCategory   = "Income_Category"
    ColCardCategory     = "Card_Category"
    ColMonthsOnBook     = "Months_on_book"
    ColRelationshipCnt  = "Total_Relationship_Count"
    ColMonthsInactive   = "Months_Inactive_12_mon"
    ColContactsCount    = "Contacts_Count_12_mon"
    ColCreditLimit      = "Credit_Limit"
    ColRevolvingBal     = "Total_Revolving_Bal"
    ColAvgOpenToBuy     = "Avg_Open_To_Buy"
    ColAmtChngQ4Q1      = "Total_Amt_Chng_Q4_Q1"
    ColTransAmt         = "Total_Trans_Amt"
    ColTransCt          = "Total_Trans_Ct"
    ColCtChngQ4Q1       = "Total_Ct_Chng_Q4_Q1"
    ColAvgUtilization   = "Avg_Utilization_Ratio"
    ColChurn            = "Churn"
)

const AttritedCustomer = "Attrited Customer"
const ExistingCustomer = "Existing Customer"

// Rental listing columns.
const (
    ColID               = "id"
    ColName             = "name"
    ColHostID           = "host_id"
    ColNeighbourhoodGrp = "neighbourhood_group"
    ColLatitude         = "latitude"
    ColLongitude        = "longitude"
    ColRoomType         = "room_type"
    ColPrice            = "price"
    ColMinimumNights    = "minimum_nights"
    ColNumberOfReviews  = "number_of_reviews"
    ColLastReview       = "last_review"
    ColReviewsPerMonth  = "reviews_per_month"
)
