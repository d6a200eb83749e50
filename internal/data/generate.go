package data

import (
    "encoding/csv"
    "math"
    "math/rand"
    "os"
    "path/filepath"
    "strconv"

    "github.com/rotisserie/eris"
    "go.uber.org/multierr"
)

var genders = []string{"M", "F"}
var educationLevels = []string{"High School", "Graduate", "Uneducated", "College", "Post-Graduate", "Doctorate", "Unknown"}
var maritalStatuses = []string{"Married", "Single", "Divorced", "Unknown"}
var incomeCategories = []string{"Less than $40K", "$40K - $60K", "$60K - $80K", "$80K - $120K", "$120K +", "Unknown"}
var cardCategories = []string{"Blue", "Silver", "Gold", "Platinum"}

// CustomerHeader is the column order written by GenerateCustomers.
var CustomerHeader = []string{
    ColClientNum, ColAttritionFlag, ColCustomerAge, ColGender, ColDependentCount,
    ColEducationLevel, ColMaritalStatus, ColIncomeCategory, ColCardCategory,
    ColMonthsOnBook, ColRelationshipCnt, ColMonthsInactive, ColContactsCount,
    ColCreditLimit, ColRevolvingBal, ColAvgOpenToBuy, ColAmtChngQ4Q1,
    ColTransAmt, ColTransCt, ColCtChngQ4Q1, ColAvgUtilization,
}

// GenerateCustomers writes n synthetic bank customers shaped like the churn dataset.
// Every fourth customer is attrited and gets lower transaction activity, so both
// classes are always present.
func GenerateCustomers(n int, seed int64, outPath string) (err error) {
    if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
        return eris.Wrap(err, "create data dir")
    }
    f, err := os.Create(outPath)
    if err != nil {
        return eris.Wrapf(err, "create %s", outPath)
    }
    defer func() { err = multierr.Append(err, f.Close()) }()

    w := csv.NewWriter(f)
    if err := w.Write(CustomerHeader); err != nil {
        return eris.Wrap(err, "write header")
    }

    rng := rand.New(rand.NewSource(seed))
    for i := 0; i < n; i++ {
        attrited := i%4 == 0
        flag := ExistingCustomer
        if attrited { flag = AttritedCustomer }

        age := 26 + rng.Intn(45)
        monthsOnBook := 13 + rng.Intn(44)
        relCount := 1 + rng.Intn(6)
        inactive := rng.Intn(4)
        contacts := rng.Intn(5)
        creditLimit := 1438.3 + rng.Float64()*30000
        revolving := float64(rng.Intn(2517))
        if revolving > creditLimit { revolving = creditLimit }
        openToBuy := creditLimit - revolving
        transCt := 40 + rng.Intn(90)
        transAmt := 1500 + rng.Float64()*12000
        amtChng := 0.4 + rng.Float64()*0.9
        ctChng := 0.4 + rng.Float64()*0.9
        if attrited {
            inactive += 2
            contacts++
            transCt = 10 + rng.Intn(40)
            transAmt = 500 + rng.Float64()*2500
            ctChng = 0.1 + rng.Float64()*0.5
            revolving = float64(rng.Intn(500))
            openToBuy = creditLimit - revolving
        }
        utilization := math.Round(revolving/creditLimit*1000) / 1000

        rec := []string{
            strconv.Itoa(700000000 + i),
            flag,
            strconv.Itoa(age),
            genders[rng.Intn(len(genders))],
            strconv.Itoa(rng.Intn(6)),
            educationLevels[rng.Intn(len(educationLevels))],
            maritalStatuses[rng.Intn(len(maritalStatuses))],
            incomeCategories[rng.Intn(len(incomeCategories))],
            cardCategories[rng.Intn(len(cardCategories))],
            strconv.Itoa(monthsOnBook),
            strconv.Itoa(relCount),
            strconv.Itoa(inactive),
            strconv.Itoa(contacts),
            strconv.FormatFloat(creditLimit, 'f', 1, 64),
            strconv.FormatFloat(revolving, 'f', 0, 64),
            strconv.FormatFloat(openToBuy, 'f', 1, 64),
            strconv.FormatFloat(amtChng, 'f', 3, 64),
            strconv.FormatFloat(transAmt, 'f', 0, 64),
            strconv.Itoa(transCt),
            strconv.FormatFloat(ctChng, 'f', 3, 64),
            strconv.FormatFloat(utilization, 'f', 3, 64),
        }
        if err := w.Write(rec); err != nil {
            return eris.Wrap(err, "write row")
        }
    }
    w.Flush()
    return eris.Wrap(w.Error(), "flush csv")
}

var boroughs = []string{"Manhattan", "Brooklyn", "Queens", "Bronx", "Staten Island"}
var roomTypes = []string{"Entire home/apt", "Private room", "Shared room"}

// ListingHeader is the column order written by GenerateListings.
var ListingHeader = []string{
    ColID, ColName, ColHostID, ColNeighbourhoodGrp, ColLatitude, ColLongitude,
    ColRoomType, ColPrice, ColMinimumNights, ColNumberOfReviews, ColLastReview, ColReviewsPerMonth,
}

// GenerateListings writes n synthetic NYC rental listings. A share of rows carry
// outlier prices, coordinates outside the city or an unparseable review date.
func GenerateListings(n int, seed int64, outPath string) (err error) {
    if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
        return eris.Wrap(err, "create data dir")
    }
    f, err := os.Create(outPath)
    if err != nil {
        return eris.Wrapf(err, "create %s", outPath)
    }
    defer func() { err = multierr.Append(err, f.Close()) }()

    w := csv.NewWriter(f)
    if err := w.Write(ListingHeader); err != nil {
        return eris.Wrap(err, "write header")
    }

    rng := rand.New(rand.NewSource(seed))
    for i := 0; i < n; i++ {
        lat := 40.55 + rng.Float64()*0.6
        lon := -74.2 + rng.Float64()*0.65
        if rng.Float64() < 0.03 {
            lat, lon = 42.1, -73.1
        }
        price := 20 + rng.Intn(330)
        if rng.Float64() < 0.05 {
            price = 1000 + rng.Intn(9000)
        }
        review := "2019-" + pad2(1+rng.Intn(12)) + "-" + pad2(1+rng.Intn(28))
        switch r := rng.Float64(); {
        case r < 0.05:
            review = ""
        case r < 0.1:
            review = "not-a-date"
        }
        room := roomTypes[rng.Intn(len(roomTypes))]
        borough := boroughs[rng.Intn(len(boroughs))]
        reviews := rng.Intn(300)

        rec := []string{
            strconv.Itoa(2539 + i),
            room + " in " + borough,
            strconv.Itoa(2787 + rng.Intn(100000)),
            borough,
            strconv.FormatFloat(lat, 'f', 5, 64),
            strconv.FormatFloat(lon, 'f', 5, 64),
            room,
            strconv.Itoa(price),
            strconv.Itoa(1 + rng.Intn(30)),
            strconv.Itoa(reviews),
            review,
            strconv.FormatFloat(float64(reviews)/24, 'f', 2, 64),
        }
        if err := w.Write(rec); err != nil {
            return eris.Wrap(err, "write row")
        }
    }
    w.Flush()
    return eris.Wrap(w.Error(), "flush csv")
}

func pad2(v int) string {
    if v < 10 { return "0" + strconv.Itoa(v) }
    return strconv.Itoa(v)
}
